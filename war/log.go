package war

import (
	"github.com/sirupsen/logrus"

	"github.com/hexaflex/arena/memory"
)

// LogListener writes war lifecycle events to a logrus entry.
type LogListener struct {
	BaseListener
	log *logrus.Entry
}

var _ Listener = &LogListener{}

// NewLogListener creates a listener logging through log.
func NewLogListener(log *logrus.Entry) *LogListener {
	return &LogListener{log: log}
}

func (l *LogListener) OnWarStart(w *War) {
	l.log.WithFields(logrus.Fields{
		"warriors": len(w.Warriors()),
		"regions":  w.Access().Len(),
	}).Debug("war start")
}

func (l *LogListener) OnRound(round int) {
	if l.log.Logger.IsLevelEnabled(logrus.TraceLevel) {
		l.log.WithField("round", round).Trace("round")
	}
}

func (l *LogListener) OnWarriorBirth(w *Warrior) {
	l.log.WithFields(logrus.Fields{
		"warrior": w.Name,
		"team":    w.Team,
		"load":    w.Load.String(),
		"size":    w.Size,
	}).Debug("warrior loaded")
}

func (l *LogListener) OnWarriorDeath(w *Warrior, reason error) {
	fields := logrus.Fields{
		"warrior": w.Name,
		"ip":      w.CPU.Instruction().IP.String(),
	}

	if f, ok := memory.IsFault(reason); ok {
		fields["channel"] = f.Channel.String()
	}

	l.log.WithFields(fields).WithError(reason).Info("warrior died")
}

func (l *LogListener) OnWarEnd(r Result) {
	l.log.WithFields(logrus.Fields{
		"reason":  r.Reason.String(),
		"rounds":  r.Rounds,
		"winners": r.Winners,
	}).Info("war end")
}
