// Package cli implements the contact terminal client.
package cli

import (
	"errors"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/welldanyogia/webrana-contact-relay/internal/contactform"
)

type rootOptions struct {
	profilePath string
	endpoint    string
	debug       bool
}

// NewRootCmd builds the contact command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "contact",
		Short: "Send a message through the contact relay",
		Long: `contact talks to the contact relay from a terminal.

Sender details can be kept in ~/.contact.yaml:

  endpoint: https://example.com/api/contact
  name: Jane
  email: jane@example.com

Example:
  contact send --message "Hello there"
  contact send --subject "Hiring" --message - < note.txt
  contact probe`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.profilePath, "profile", "p", "", "profile file (default is ~/"+DefaultProfileName+")")
	root.PersistentFlags().StringVarP(&opts.endpoint, "endpoint", "e", "", "relay endpoint URL")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug output")

	root.AddCommand(newSendCmd(opts))
	root.AddCommand(newProbeCmd(opts))

	return root
}

// Execute runs the contact command
func Execute() error {
	root := NewRootCmd()
	err := root.Execute()
	if err != nil && !errors.As(err, new(reportedError)) {
		newLogger(root.ErrOrStderr(), false).Error(err)
	}
	return err
}

func newLogger(w io.Writer, debug bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: "contact"})
	if debug {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}
	return logger
}

// profile resolves flags, the profile file and defaults
func (o *rootOptions) profile(flags Profile) (*Profile, error) {
	path, required := o.profilePath, true
	if path == "" {
		path, required = DefaultProfilePath(), false
	}

	file, err := LoadProfile(path, required)
	if err != nil {
		return nil, err
	}

	flags.Endpoint = o.endpoint
	return Resolve(&flags, file)
}

func newClient(p *Profile) *contactform.Client {
	var httpClient *http.Client
	if p.Timeout > 0 {
		httpClient = &http.Client{Timeout: p.Timeout}
	}
	return contactform.NewClient(p.Endpoint, httpClient)
}
