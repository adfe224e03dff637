package record

import (
	"math"
	"sync/atomic"
)

// Record is the shared aggregate every acquisition loop writes into.
//
// Each field has exactly one producer. Fields are stored individually as
// atomics, so a Snapshot sees every field fresh within its own producer's
// cadence but never a cross-field consistent instant.
type Record struct {
	torque    float32Field
	loadcell  float32Field
	windDir   float32Field
	windSpeed float32Field
	rotorRate float32Field
	pitch     atomic.Int32
}

// Snapshot is a copy of the record taken with per-field atomic loads.
//
// WheelRate, Gear and MatAngleDeg are reserved: the rig has no producer for
// them yet, so they are always zero, but they stay part of the published
// record.
type Snapshot struct {
	TorqueNm    float32 `json:"torque_nm"`
	LoadcellN   float32 `json:"loadcell_n"`
	WindDirDeg  float32 `json:"wind_dir_deg"`
	WindSpeedKt float32 `json:"wind_speed_kt"`
	RotorRate   float32 `json:"rotor_rate"`
	WheelRate   float32 `json:"wheel_rate"`
	Gear        int     `json:"gear"`
	Pitch       int     `json:"pitch"`
	MatAngleDeg float32 `json:"mat_angle_deg"`
}

func New() *Record { return &Record{} }

func (r *Record) SetTorque(v float32)    { r.torque.store(v) }
func (r *Record) SetLoadcell(v float32)  { r.loadcell.store(v) }
func (r *Record) SetRotorRate(v float32) { r.rotorRate.store(v) }
func (r *Record) SetPitch(v uint16)      { r.pitch.Store(int32(v)) }

// SetWind stores direction and speed. The two stores are independent; a
// concurrent Snapshot may observe one updated and not the other.
func (r *Record) SetWind(dirDeg, speedKt float32) {
	r.windDir.store(dirDeg)
	r.windSpeed.store(speedKt)
}

func (r *Record) Snapshot() Snapshot {
	if r == nil {
		return Snapshot{}
	}
	return Snapshot{
		TorqueNm:    r.torque.load(),
		LoadcellN:   r.loadcell.load(),
		WindDirDeg:  r.windDir.load(),
		WindSpeedKt: r.windSpeed.load(),
		RotorRate:   r.rotorRate.load(),
		Pitch:       int(r.pitch.Load()),
	}
}

type float32Field struct {
	bits atomic.Uint32
}

func (f *float32Field) store(v float32) { f.bits.Store(math.Float32bits(v)) }

func (f *float32Field) load() float32 { return math.Float32frombits(f.bits.Load()) }
