package v1

// EngineStatus is the body of GET /engine.
type EngineStatus struct {
	WorkerCount  int      `json:"workerCount"`
	MaxWorkers   int      `json:"maxWorkers"`
	PrimaryCount int      `json:"primaryCount"`
	Busy         bool     `json:"busy"`
	QueueLength  int      `json:"queueLength"`
	Workers      []Worker `json:"workers"`
}

type Worker struct {
	Id          int    `json:"id"`
	Slot        int    `json:"slot"`
	Role        string `json:"role"`
	Busy        bool   `json:"busy"`
	Terminating bool   `json:"terminating"`
	WindowMin   int    `json:"windowMin"`
	WindowMax   int    `json:"windowMax"`
	Executed    uint64 `json:"executed"`
	CurrentJob  *Job   `json:"currentJob,omitempty"`
}

type Job struct {
	Serial   uint64 `json:"serial"`
	Category string `json:"category"`
}

// QueueItem is one entry of GET /engine/queue, in fetch order.
type QueueItem struct {
	Serial    uint64   `json:"serial,omitempty"`
	Category  string   `json:"category"`
	Priority  int      `json:"priority"`
	Key       string   `json:"key"`
	Processed bool     `json:"processed"`
	Canceled  bool     `json:"canceled"`
	State     string   `json:"state"`
	Result    string   `json:"result"`
	Logs      []string `json:"logs,omitempty"`
}

type QueueResponse struct {
	Items []QueueItem `json:"items"`
	Total int         `json:"total"`
}

type WorkersResponse struct {
	Count int `json:"count"`
	Max   int `json:"max"`
}

type WorkersRequest struct {
	Count *int `json:"count" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
