package address

import (
	"context"
	"sync"

	"github.com/3-lines-studio/studio/internal/core"
	"github.com/3-lines-studio/studio/internal/logx"
	"github.com/3-lines-studio/studio/internal/vdom"
)

type job struct {
	componentID string
	root        *vdom.Node
}

// Scheduler defers addressing walks until the rendered trees are committed.
// Scheduling the same component twice before a flush keeps the latest tree.
type Scheduler struct {
	mu      sync.Mutex
	pending []job
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Schedule(componentID string, root *vdom.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.pending {
		if s.pending[i].componentID == componentID {
			s.pending[i].root = root
			return
		}
	}
	s.pending = append(s.pending, job{componentID: componentID, root: root})
}

func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// FlushResult holds the handles per addressed component and the skips.
type FlushResult struct {
	Handles map[string][]core.ElementHandle
	Skipped []*core.RenderError
}

// Flush runs every pending walk whose component still exists. Walks whose
// component is gone are dropped and reported as addressing skips.
func (s *Scheduler) Flush(ctx context.Context, exists func(componentID string) bool) FlushResult {
	s.mu.Lock()
	jobs := s.pending
	s.pending = nil
	s.mu.Unlock()

	res := FlushResult{Handles: make(map[string][]core.ElementHandle, len(jobs))}
	for _, j := range jobs {
		if exists != nil && !exists(j.componentID) {
			logx.WithComponent(ctx, j.componentID, "").Debug("addressing skipped, component removed")
			res.Skipped = append(res.Skipped, &core.RenderError{
				Kind:    core.AddressingSkip,
				Message: "component " + j.componentID + " no longer exists",
				Err:     core.ErrComponentAbsent,
			})
			continue
		}
		res.Handles[j.componentID] = Assign(j.componentID, j.root)
	}
	return res
}
