package handlers

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/micanis/bot-pocket-pace/models"
)

// Bot owns the Discord session and routes slash commands to the Handler.
type Bot struct {
	session *discordgo.Session
	handler *Handler
	log     *zap.Logger
}

func NewBot(token string, handler *Handler, log *zap.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	b := &Bot{session: session, handler: handler, log: log}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteraction)
	return b, nil
}

// Start opens the gateway connection and registers the command set.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord session: %w", err)
	}
	if _, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, "", commands); err != nil {
		b.session.Close()
		return fmt.Errorf("registering commands: %w", err)
	}
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

// SendChannelMessage pushes content to a channel, used by the notifier sweep.
func (b *Bot) SendChannelMessage(channelID, content string) error {
	_, err := b.session.ChannelMessageSend(channelID, content)
	return err
}

func (b *Bot) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	b.log.Info("discord session ready",
		zap.String("username", r.User.Username),
		zap.Int("guilds", len(r.Guilds)))
}

var periodChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "daily", Value: string(models.PeriodDaily)},
	{Name: "7day", Value: string(models.Period7Day)},
	{Name: "10day", Value: string(models.Period10Day)},
	{Name: "14day", Value: string(models.Period14Day)},
	{Name: "monthly", Value: string(models.PeriodMonthly)},
}

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "spend",
		Description: "Record a spend",
		Options: []*discordgo.ApplicationCommandOption{
			intOption("amount", "Amount spent"),
			stringOption("item", "What it was for"),
		},
	},
	{
		Name:        "income",
		Description: "Set your recurring base income",
		Options: []*discordgo.ApplicationCommandOption{
			intOption("amount", "Monthly base income"),
		},
	},
	{
		Name:        "extra",
		Description: "Record a one-off extra income",
		Options: []*discordgo.ApplicationCommandOption{
			intOption("amount", "Amount received"),
			stringOption("description", "Where it came from"),
		},
	},
	{
		Name:        "fixedcost",
		Description: "Record a recurring monthly cost",
		Options: []*discordgo.ApplicationCommandOption{
			intOption("amount", "Monthly amount"),
			stringOption("description", "What it pays for"),
		},
	},
	{
		Name:        "savings",
		Description: "Set your savings goal",
		Options: []*discordgo.ApplicationCommandOption{
			intOption("amount", "Amount to reserve each month"),
		},
	},
	{
		Name:        "period",
		Description: "Change how your remaining budget is presented",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "choice",
				Description: "Calculation period",
				Required:    true,
				Choices:     periodChoices,
			},
		},
	},
	{
		Name:        "notify",
		Description: "Enable or disable the daily summary in this channel",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionBoolean,
				Name:        "enabled",
				Description: "true to enable, false to disable",
				Required:    true,
			},
		},
	},
	{
		Name:        "balance",
		Description: "Show your remaining budget",
	},
}

func intOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func stringOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()
	userID := interactionUserID(i)
	if userID == "" {
		b.log.Warn("interaction without a resolvable user", zap.String("command", data.Name))
		return
	}

	opts := optionMap(data.Options)
	ctx := context.Background()

	var reply string
	switch data.Name {
	case "spend":
		reply = b.handler.RecordSpend(ctx, userID, opts["amount"].IntValue(), opts["item"].StringValue())
	case "income":
		reply = b.handler.SetBaseIncome(ctx, userID, opts["amount"].IntValue())
	case "extra":
		reply = b.handler.RecordExtraIncome(ctx, userID, opts["amount"].IntValue(), opts["description"].StringValue())
	case "fixedcost":
		reply = b.handler.RecordFixedCost(ctx, userID, opts["amount"].IntValue(), opts["description"].StringValue())
	case "savings":
		reply = b.handler.SetSavingsGoal(ctx, userID, opts["amount"].IntValue())
	case "period":
		reply = b.handler.SetPeriod(ctx, userID, opts["choice"].StringValue())
	case "notify":
		reply = b.handler.SetNotifyChannel(ctx, userID, i.ChannelID, opts["enabled"].BoolValue())
	case "balance":
		reply = b.handler.Balance(ctx, userID)
	default:
		b.log.Warn("unknown command", zap.String("command", data.Name))
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: reply},
	})
	if err != nil {
		b.log.Error("interaction response failed",
			zap.String("command", data.Name),
			zap.String("user_id", userID),
			zap.Error(err))
	}
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}
