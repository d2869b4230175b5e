package config

// NotificationConfig defines how operator emails are delivered.
// Leaving SMTPHost empty switches delivery to the log only.
type NotificationConfig struct {
	SMTPHost      string   `json:"smtp_host,omitempty" yaml:"smtp_host,omitempty"`
	SMTPPort      int      `json:"smtp_port,omitempty" yaml:"smtp_port,omitempty" validate:"omitempty,min=1,max=65535"`
	SMTPUsername  string   `json:"smtp_username,omitempty" yaml:"smtp_username,omitempty"`
	SMTPPassword  string   `json:"smtp_password,omitempty" yaml:"smtp_password,omitempty"`
	Sender        string   `json:"sender,omitempty" yaml:"sender,omitempty" validate:"omitempty,email"`
	Recipients    []string `json:"recipients,omitempty" yaml:"recipients,omitempty" validate:"dive,email"`
	SubjectPrefix string   `json:"subject_prefix,omitempty" yaml:"subject_prefix,omitempty"`
	// PGPPublicKeyFile points at an armored public keyring. When set, bodies are encrypted.
	PGPPublicKeyFile string `json:"pgp_public_key_file,omitempty" yaml:"pgp_public_key_file,omitempty"`
}

// NewDefaultNotificationConfig creates default notification configuration
func NewDefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		SMTPPort:   DefaultSMTPPort,
		Recipients: []string{},
	}
}

// SMTPEnabled reports whether emails should be sent over SMTP.
func (c NotificationConfig) SMTPEnabled() bool {
	return c.SMTPHost != "" && len(c.Recipients) > 0
}
