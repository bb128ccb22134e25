package live

import (
	"io"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"conflictsuite/internal/runner"
)

// Controller runs the live UI and implements runner.PipelineObserver.
type Controller struct {
	events    chan Event
	program   *tea.Program
	done      chan struct{}
	closeOnce sync.Once
}

// Start launches a live UI controller that writes to stdout.
func Start(stdout io.Writer, opts Options) *Controller {
	if stdout == nil {
		stdout = os.Stdout
	}
	events := make(chan Event, 256)
	model := NewModel(events, opts)
	program := tea.NewProgram(model, tea.WithOutput(stdout), tea.WithAltScreen())
	controller := &Controller{
		events:  events,
		program: program,
		done:    make(chan struct{}),
	}
	go func() {
		_, _ = program.Run()
		close(controller.done)
	}()
	return controller
}

// Close signals the UI to stop.
func (c *Controller) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		close(c.events)
	})
}

// Wait blocks until the UI has exited.
func (c *Controller) Wait() {
	if c == nil {
		return
	}
	<-c.done
}

// OnRunStart forwards run start events to the UI.
func (c *Controller) OnRunStart(info runner.RunInfo) {
	c.send(Event{Kind: EventRunStart, Info: info}, true)
}

// OnStageEvent forwards stage updates to the UI. Progress updates are dropped when the UI
// falls behind.
func (c *Controller) OnStageEvent(event runner.StageEvent) {
	c.send(Event{Kind: EventStage, Stage: event}, event.Type != runner.StageProgress)
}

// OnRunEnd forwards run completion events to the UI and closes it.
func (c *Controller) OnRunEnd(summary runner.Summary, err error) {
	event := Event{Kind: EventRunEnd, OutputHash: summary.Manifest.OutputHash}
	if err != nil {
		event.Error = err.Error()
	}
	c.send(event, true)
	c.Close()
}

// send enqueues an event. Lifecycle events block; progress events never do.
func (c *Controller) send(event Event, wait bool) {
	if c == nil {
		return
	}
	if wait {
		select {
		case c.events <- event:
		case <-c.done:
		}
		return
	}
	select {
	case c.events <- event:
	default:
	}
}
