package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Env holds ambient settings which come from the environment rather than the
// monitor configuration file. All variables are prefixed with SUBMIT_.
type Env struct {
	// SMTPHost is the SMTP relay used to send notifications. If empty
	// notifications are logged instead of sent.
	SMTPHost string `split_words:"true"`

	// SMTPPort is the SMTP relay port
	SMTPPort int `default:"25" split_words:"true"`

	// MailFrom is the From address on notification emails
	MailFrom string `default:"submit-monitor@localhost" split_words:"true"`

	// MailDomain is the domain appended to usernames when deriving a
	// submission owner's email address
	MailDomain string `default:"seas.upenn.edu" split_words:"true"`

	// LeaderboardPage is the path the leaderboard HTML page is written to
	LeaderboardPage string `default:"leaderboard.html" split_words:"true"`

	// MinSubmitInterval is the minimum time a team must wait between
	// leaderboard submissions
	MinSubmitInterval time.Duration `default:"5h" split_words:"true"`

	// PollInterval is the delay between monitor passes in serve mode
	PollInterval time.Duration `default:"1m" split_words:"true"`

	// HTTPAddr is the status server's bind address in serve mode
	HTTPAddr string `default:":8000" split_words:"true"`
}

// NewEnv loads ambient settings from environment variables
func NewEnv() (*Env, error) {
	var env Env

	if err := envconfig.Process("submit", &env); err != nil {
		return nil, fmt.Errorf("error loading values from environment variables: %s",
			err.Error())
	}

	return &env, nil
}

// String returns Env in string form for logging
func (e Env) String() (string, error) {
	envBytes, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("failed to convert environment configuration into JSON: %s",
			err.Error())
	}

	return string(envBytes), nil
}
