package monitor

import "time"

func (m *Monitor) SetClock(now func() time.Time) {
	m.now = now
}
