package v1

import (
	"github.com/pageview/pageview/pkg/scheduler"
)

const (
	WorkerRolePrimary    = "primary"
	WorkerRoleBackground = "background"
)

// NewEngineStatusFromModel converts an engine snapshot to its API form.
func NewEngineStatusFromModel(st scheduler.EngineStatus) EngineStatus {
	out := EngineStatus{
		WorkerCount:  st.WorkerCount,
		MaxWorkers:   st.MaxWorkers,
		PrimaryCount: st.PrimaryCount,
		Busy:         st.Busy,
		QueueLength:  st.QueueLength,
		Workers:      make([]Worker, 0, len(st.Workers)),
	}
	for _, w := range st.Workers {
		out.Workers = append(out.Workers, NewWorkerFromModel(w))
	}
	return out
}

func NewWorkerFromModel(w scheduler.WorkerStatus) Worker {
	role := WorkerRoleBackground
	if w.Primary {
		role = WorkerRolePrimary
	}

	apiWorker := Worker{
		Id:          w.ID,
		Slot:        w.Slot,
		Role:        role,
		Busy:        w.Busy,
		Terminating: w.Terminating,
		WindowMin:   w.Window.Min,
		WindowMax:   w.Window.Max,
		Executed:    w.Executed,
	}
	if w.CurrentJob != 0 {
		apiWorker.CurrentJob = &Job{Serial: w.CurrentJob, Category: w.Category}
	}
	return apiWorker
}

// NewQueueResponseFromModel converts a queue snapshot, keeping fetch order.
func NewQueueResponseFromModel(infos []scheduler.SourceInfo) QueueResponse {
	items := make([]QueueItem, 0, len(infos))
	for _, i := range infos {
		items = append(items, QueueItem{
			Serial:    i.Serial,
			Category:  i.Category,
			Priority:  i.Priority,
			Key:       i.Key,
			Processed: i.Processed,
			Canceled:  i.Canceled,
			State:     i.State,
			Result:    i.Result,
			Logs:      i.Logs,
		})
	}
	return QueueResponse{Items: items, Total: len(items)}
}
