package respond

import (
	"regexp"
)

var (
	// chatBotTokenPattern matches "Bot <token>" authorization values that
	// leak when a chat delivery error wraps the raw HTTP request.
	chatBotTokenPattern = regexp.MustCompile(`Bot [a-zA-Z0-9._-]{10,}`)

	// bearerTokenPattern covers JWTs and site API keys quoted from an
	// Authorization header.
	bearerTokenPattern = regexp.MustCompile(`Bearer [a-zA-Z0-9._-]{10,}`)

	// apiKeyHeaderPattern covers the site key header echoed into errors.
	apiKeyHeaderPattern = regexp.MustCompile(`(?i)(x-api-key[:=]\s*)[a-zA-Z0-9._-]+`)

	// dsnPasswordPattern masks the password inside a connection URL.
	dsnPasswordPattern = regexp.MustCompile(`://([^:]+):([^@]+)@`)
)

// SanitizeError はエラーメッセージ内の認証情報をマスクして返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	msg = chatBotTokenPattern.ReplaceAllString(msg, "Bot ****")
	msg = bearerTokenPattern.ReplaceAllString(msg, "Bearer ****")
	msg = apiKeyHeaderPattern.ReplaceAllString(msg, "${1}****")
	msg = dsnPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
