package valueobjects

// TaskStatus 下载任务状态值对象
// 不可变的值对象,表示下载任务的状态
type TaskStatus string

const (
	TaskStatusPending     TaskStatus = "pending"     // 等待中
	TaskStatusDownloading TaskStatus = "downloading" // 下载中
	TaskStatusCompleted   TaskStatus = "completed"   // 已完成
	TaskStatusFailed      TaskStatus = "failed"      // 失败
	TaskStatusCancelled   TaskStatus = "cancelled"   // 已取消
)

// String 返回状态的字符串表示
func (s TaskStatus) String() string {
	return string(s)
}

// IsValid 检查任务状态是否有效
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusDownloading,
		TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal 判断是否为终态
// 终态的任务不再接受状态变更,只能被删除
func (s TaskStatus) IsTerminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// IsActive 判断是否为活动状态(等待中或下载中)
func (s TaskStatus) IsActive() bool {
	return s == TaskStatusPending || s == TaskStatusDownloading
}

// CanTransitionTo 判断是否允许迁移到目标状态
// 状态机: pending → downloading → {completed|failed|cancelled}
// pending也可以直接被取消或失败(如启动下载器失败)
func (s TaskStatus) CanTransitionTo(target TaskStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case TaskStatusPending:
		return target == TaskStatusDownloading || target.IsTerminal()
	case TaskStatusDownloading:
		return target.IsTerminal()
	default:
		return false
	}
}

// ChineseName 返回状态的中文名称
func (s TaskStatus) ChineseName() string {
	switch s {
	case TaskStatusPending:
		return "等待中"
	case TaskStatusDownloading:
		return "下载中"
	case TaskStatusCompleted:
		return "已完成"
	case TaskStatusFailed:
		return "失败"
	case TaskStatusCancelled:
		return "已取消"
	default:
		return "未知"
	}
}
