package models

import "net/mail"

// NotificationMessage is the email the relay hands to a provider.
type NotificationMessage struct {
	From    mail.Address
	To      []mail.Address
	ReplyTo mail.Address
	Subject string
	Text    string
	HTML    string
}

// Recipients returns the bare destination addresses
func (m *NotificationMessage) Recipients() []string {
	addrs := make([]string, 0, len(m.To))
	for _, to := range m.To {
		addrs = append(addrs, to.Address)
	}
	return addrs
}
