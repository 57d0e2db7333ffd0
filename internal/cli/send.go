package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/welldanyogia/webrana-contact-relay/internal/contactform"
)

func newSendCmd(root *rootOptions) *cobra.Command {
	var flags Profile
	var message string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a message",
		Long: `Send a message to the site owner.

Pass --message - to read the message from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(cmd.ErrOrStderr(), root.debug)

			p, err := root.profile(flags)
			if err != nil {
				return err
			}

			if message == "-" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read message: %w", err)
				}
				message = strings.TrimRight(string(data), "\n")
			}

			toaster := contactform.NewToaster(contactform.WithOnChange(toastRenderer(logger)))
			defer toaster.Close()

			controller := contactform.NewController(newClient(p), toaster)
			controller.UpdateField(contactform.FieldName, p.Name)
			controller.UpdateField(contactform.FieldEmail, p.Email)
			if p.Subject != "" {
				controller.UpdateField(contactform.FieldSubject, p.Subject)
			}
			controller.UpdateField(contactform.FieldMessage, message)

			logger.Debug("sending", "endpoint", p.Endpoint, "name", p.Name)

			outcome, err := controller.Submit(cmd.Context())
			if err != nil {
				return err
			}
			if outcome.Status != contactform.StatusSuccess {
				return reportedError{errors.New(outcome.Message)}
			}

			if outcome.ID != "" {
				logger.Info("delivered", "id", outcome.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.Name, "name", "n", "", "your name")
	cmd.Flags().StringVar(&flags.Email, "email", "", "your email address")
	cmd.Flags().StringVarP(&flags.Subject, "subject", "s", "", "subject (default \""+contactform.DefaultSubject+"\")")
	cmd.Flags().StringVarP(&message, "message", "m", "", "message text, or - for stdin")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "request timeout (default 10s)")

	return cmd
}

// reportedError has already been shown to the user as a toast
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

// toastRenderer prints every toast once, when it first appears
func toastRenderer(logger *log.Logger) func([]contactform.Toast) {
	var mu sync.Mutex
	shown := make(map[string]bool)

	return func(active []contactform.Toast) {
		mu.Lock()
		defer mu.Unlock()
		for _, toast := range active {
			if shown[toast.ID] {
				continue
			}
			shown[toast.ID] = true
			if toast.Variant == contactform.VariantError {
				logger.Error(toast.Message)
			} else {
				logger.Info(toast.Message)
			}
		}
	}
}
