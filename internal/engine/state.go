// Package engine contains the click scheduler, pattern recorder and
// pattern player, and the shared run/pause/stop discipline between them.
package engine

// State is the lifecycle state of an engine component. The scheduler
// moves between Stopped, Running and Paused; the player between Idle,
// Playing and Paused; the recorder between Idle and Recording.
type State string

const (
	StateStopped   State = "STOPPED"
	StateRunning   State = "RUNNING"
	StatePaused    State = "PAUSED"
	StateIdle      State = "IDLE"
	StatePlaying   State = "PLAYING"
	StateRecording State = "RECORDING"
)
