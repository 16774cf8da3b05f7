// Package tasks 定义 asynq 后台任务的类型与负载。
package tasks

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// TypeReactionRecount 是表情计数对账任务的类型名。
// 周期任务负载为空（对账最近活跃的全部公告）；单发任务可携带
// 具体的公告 ID。
const TypeReactionRecount = "reaction:recount"

// ReactionRecountPayload 是对账任务的负载。
// AnnouncementID 为 0 表示对账最近有回应活动的全部公告。
type ReactionRecountPayload struct {
	AnnouncementID uint `json:"announcement_id"`
}

// NewReactionRecountTask 创建一个针对单条公告的对账任务
func NewReactionRecountTask(announcementID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(ReactionRecountPayload{AnnouncementID: announcementID})
	if err != nil {
		return nil, fmt.Errorf("marshal reaction recount payload: %w", err)
	}
	return asynq.NewTask(TypeReactionRecount, payload), nil
}

// NewPeriodicRecountTask 创建周期全量对账任务
func NewPeriodicRecountTask() (*asynq.Task, error) {
	return NewReactionRecountTask(0)
}
