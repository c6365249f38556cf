package notifier

import (
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/ifabiensd-source/Zone-inscriptions/internal/models"
)

type Notifier interface {
	NotifyRegistration(activity models.Activity, registration models.Registration) error
	NotifyUnregistration(activity models.Activity, registrationID int64) error
}

type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordNotifier(session *discordgo.Session, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

func (n *DiscordNotifier) NotifyRegistration(activity models.Activity, registration models.Registration) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	message := fmt.Sprintf("🎉 **Nouvelle inscription**\n**Activité :** %s (%s %s)\n**Jeune :** %s %s\n**Service :** %s\n**Places :** %d/%d",
		activity.Title,
		activity.Date,
		activity.StartTime,
		registration.FirstName,
		registration.LastName,
		registration.Department,
		len(activity.Registrations),
		activity.Spots,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}

func (n *DiscordNotifier) NotifyUnregistration(activity models.Activity, registrationID int64) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	message := fmt.Sprintf("👋 **Désinscription**\n**Activité :** %s (%s)\n**Places :** %d/%d",
		activity.Title,
		activity.Date,
		len(activity.Registrations),
		activity.Spots,
	)

	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}

	return nil
}
