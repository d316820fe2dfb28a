package slack

import "regexp"

// slackMentionPattern matches Slack's mention markup, e.g. <@U0123ABC>.
var slackMentionPattern = regexp.MustCompile(`<@([A-Z0-9]+)>`)

// NormalizeText rewrites Slack mention markup <@U123> into plain @U123 and
// returns the rewritten text together with the mentioned user IDs.
func NormalizeText(text string) (string, []string) {
	var mentions []string
	out := slackMentionPattern.ReplaceAllStringFunc(text, func(m string) string {
		id := slackMentionPattern.FindStringSubmatch(m)[1]
		mentions = append(mentions, id)
		return "@" + id
	})
	return out, mentions
}
