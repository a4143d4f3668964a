// Package contact handles messages sent through the site's contact form.
package contact

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var ErrInvalid = errors.New("invalid contact message")

type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Normalize trims surrounding whitespace from every field.
func (m Message) Normalize() Message {
	return Message{
		Name:    strings.TrimSpace(m.Name),
		Email:   strings.TrimSpace(m.Email),
		Subject: strings.TrimSpace(m.Subject),
		Message: strings.TrimSpace(m.Message),
	}
}

func (m Message) Validate() error {
	var problems []string
	for _, f := range []struct{ name, value string }{
		{"name", m.Name},
		{"email", m.Email},
		{"subject", m.Subject},
		{"message", m.Message},
	} {
		if strings.TrimSpace(f.value) == "" {
			problems = append(problems, f.name+": required")
		}
	}

	if email := strings.TrimSpace(m.Email); email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			problems = append(problems, "email: invalid address")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}
