package queue

import (
	"strings"

	"github.com/yeisme/casefile/pkg/internal/model"
)

// DefaultTopicPrefix 文档事件主题前缀.
const DefaultTopicPrefix = "cf.document"

// TopicFor 返回动作对应的主题，如 document.version_create -> cf.document.version_create.
func TopicFor(prefix string, action model.EventAction) string {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}

	return prefix + "." + strings.TrimPrefix(string(action), "document.")
}

// DocumentTopics 返回全部文档事件主题.
func DocumentTopics(prefix string) []string {
	actions := []model.EventAction{
		model.ActionCreate, model.ActionVersionCreate, model.ActionUpdate,
		model.ActionVerify, model.ActionUnverify, model.ActionArchive,
		model.ActionRestore, model.ActionStatusChange, model.ActionView, model.ActionDownload,
	}

	topics := make([]string, len(actions))
	for i, a := range actions {
		topics[i] = TopicFor(prefix, a)
	}

	return topics
}
