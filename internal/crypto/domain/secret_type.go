package domain

import "strings"

// SecretType tags the kind of secret material a container or finding holds.
// The vocabulary is closed except for the "custom:<name>" escape hatch,
// which lets the rule engine (internal/detection) attach arbitrary
// user-defined labels without widening this enum.
type SecretType string

// Closed vocabulary of built-in secret types, mirroring the pattern
// registry's built-in coverage (internal/detection/service/patterns.go).
const (
	SecretTypeAWSAccessKey  SecretType = "aws_access_key"
	SecretTypeAWSSecretKey  SecretType = "aws_secret_key"
	SecretTypeGitHubToken   SecretType = "github_token"
	SecretTypePrivateKey    SecretType = "private_key"
	SecretTypeDatabaseURL   SecretType = "database_url"
	SecretTypeStripeKey     SecretType = "stripe_key"
	SecretTypeSendGridKey   SecretType = "sendgrid_key"
	SecretTypeTwilioKey     SecretType = "twilio_key"
	SecretTypeSlackToken    SecretType = "slack_token"
	SecretTypeJWT           SecretType = "jwt"
	SecretTypeBearerToken   SecretType = "bearer_token"
	SecretTypeEnvAssignment SecretType = "env_assignment"
	SecretTypeHighEntropy   SecretType = "high_entropy"
	SecretTypeGeneric       SecretType = "generic"
)

// customPrefix marks a SecretType as a caller-defined variant.
const customPrefix = "custom:"

// CustomSecretType builds the "custom:<name>" variant for a user-defined
// rule's secret-type tag.
func CustomSecretType(name string) SecretType {
	return SecretType(customPrefix + name)
}

// IsCustom reports whether t is a "custom:<name>" variant rather than a
// built-in vocabulary entry.
func (t SecretType) IsCustom() bool {
	return strings.HasPrefix(string(t), customPrefix)
}
