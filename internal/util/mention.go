package util

import "regexp"

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// ParseMentions 从评论文本中提取 @username 标记，去重并保持出现顺序。
// 未注册的用户名由调用方解析时静默丢弃。
func ParseMentions(text string) []string {
	matches := mentionPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	usernames := make([]string, 0, len(matches))
	for _, m := range matches {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		usernames = append(usernames, name)
	}
	return usernames
}
