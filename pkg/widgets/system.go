package widgets

import (
	"context"
	"math/rand/v2"
	"net"
	"sync"
	"time"

	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/sysfs"
)

// SystemData is the system info panel. Percentages are 0-100.
type SystemData struct {
	CPU         float64 `json:"cpu"`
	Memory      float64 `json:"memory"`
	Storage     float64 `json:"storage"`
	Network     string  `json:"network"` // connected, disconnected
	UptimeMS    int64   `json:"uptime_ms"`
	Temperature float64 `json:"temperature"`
	Simulated   bool    `json:"simulated"`
}

// System reports host load from procfs and sysfs. Readings that are not
// available drift randomly from the last value instead.
type System struct {
	proc   procfs.FS
	procOK bool
	sys    sysfs.FS
	sysOK  bool

	rng *rand.Rand
	now func() time.Time

	mu      sync.Mutex
	last    SystemData
	prevCPU *procfs.CPUStat
}

// NewSystem reads from procRoot and sysRoot (normally /proc and /sys).
// A nil rng is seeded from the clock.
func NewSystem(procRoot, sysRoot string, rng *rand.Rand) *System {
	if rng == nil {
		rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	s := &System{
		rng: rng,
		now: time.Now,
		last: SystemData{
			CPU:         25,
			Memory:      68,
			Storage:     45,
			Network:     "connected",
			UptimeMS:    int64(24 * time.Hour / time.Millisecond),
			Temperature: 42,
		},
	}
	if fs, err := procfs.NewFS(procRoot); err == nil {
		s.proc, s.procOK = fs, true
	}
	if fs, err := sysfs.NewFS(sysRoot); err == nil {
		s.sys, s.sysOK = fs, true
	}
	return s
}

func (s *System) ID() string              { return "system" }
func (s *System) Interval() time.Duration { return 5 * time.Second }

func (s *System) Refresh(_ context.Context) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.last
	d.Simulated = false
	drift := func(v, step, lo, hi float64) float64 {
		d.Simulated = true
		return clamp(v+(s.rng.Float64()-0.5)*step, lo, hi)
	}

	cpuOK, uptimeOK := false, false
	if s.procOK {
		if st, err := s.proc.Stat(); err == nil {
			if s.prevCPU != nil {
				if pct, ok := cpuPercent(*s.prevCPU, st.CPUTotal); ok {
					d.CPU, cpuOK = pct, true
				}
			}
			cpu := st.CPUTotal
			s.prevCPU = &cpu
			if st.BootTime > 0 {
				d.UptimeMS = s.now().Sub(time.Unix(int64(st.BootTime), 0)).Milliseconds()
				uptimeOK = true
			}
		}
	}
	if !cpuOK {
		d.CPU = drift(d.CPU, 10, 0, 100)
	}
	if !uptimeOK {
		d.UptimeMS += s.Interval().Milliseconds()
	}

	if mem, ok := s.memoryPercent(); ok {
		d.Memory = mem
	} else {
		d.Memory = drift(d.Memory, 5, 0, 100)
	}

	if temp, ok := s.temperature(); ok {
		d.Temperature = temp
	} else {
		d.Temperature = drift(d.Temperature, 3, 30, 80)
	}

	d.Network = networkState()
	s.last = d
	return d, nil
}

func (s *System) memoryPercent() (float64, bool) {
	if !s.procOK {
		return 0, false
	}
	mi, err := s.proc.Meminfo()
	if err != nil || mi.MemTotal == nil || mi.MemAvailable == nil || *mi.MemTotal == 0 {
		return 0, false
	}
	used := float64(*mi.MemTotal - min(*mi.MemAvailable, *mi.MemTotal))
	return used / float64(*mi.MemTotal) * 100, true
}

func (s *System) temperature() (float64, bool) {
	if !s.sysOK {
		return 0, false
	}
	zones, err := s.sys.ClassThermalZoneStats()
	if err != nil {
		return 0, false
	}
	for _, z := range zones {
		if z.Temp > 0 {
			return float64(z.Temp) / 1000, true
		}
	}
	return 0, false
}

func cpuPercent(prev, cur procfs.CPUStat) (float64, bool) {
	idle := func(c procfs.CPUStat) float64 { return c.Idle + c.Iowait }
	total := func(c procfs.CPUStat) float64 {
		return c.User + c.Nice + c.System + c.Idle + c.Iowait + c.IRQ + c.SoftIRQ + c.Steal
	}
	dt := total(cur) - total(prev)
	if dt <= 0 {
		return 0, false
	}
	busy := dt - (idle(cur) - idle(prev))
	return clamp(busy/dt*100, 0, 100), true
}

func networkState() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "disconnected"
	}
	for _, ifc := range ifaces {
		if ifc.Flags&net.FlagUp != 0 && ifc.Flags&net.FlagLoopback == 0 {
			return "connected"
		}
	}
	return "disconnected"
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}
