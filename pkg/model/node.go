package model

import (
	"github.com/ritzau/deflex-graph/pkg/label"
)

// Kind identifies the role of a node in the energy system
type Kind string

const (
	KindBus         Kind = "bus"
	KindSource      Kind = "source"
	KindSink        Kind = "sink"
	KindTransformer Kind = "transformer"
	KindStorage     Kind = "storage"
)

// Node is one of Bus, Source, Sink, Transformer or Storage.
// The set is closed: only types in this package implement it.
type Node interface {
	Label() label.Label
	Kind() Kind
	// Inputs are the ports through which energy enters the node
	Inputs() []Port
	// Outputs are the ports through which energy leaves the node
	Outputs() []Port

	node()
}

// Flow holds the parameters of a single connection between a node and a bus
type Flow struct {
	// NominalValue is the capacity of the flow; nil means unbounded.
	NominalValue *float64 `json:"nominalValue,omitempty" yaml:"nominal_value,omitempty"`
	// ActualValue is the shape the flow follows when Fixed is set.
	ActualValue []float64 `json:"actualValue,omitempty" yaml:"actual_value,omitempty"`
	Fixed       bool      `json:"fixed,omitempty" yaml:"fixed,omitempty"`
	// VariableCosts are paid per unit of energy.
	VariableCosts float64 `json:"variableCosts,omitempty" yaml:"variable_costs,omitempty"`
	// Emission per unit of energy.
	Emission float64 `json:"emission,omitempty" yaml:"emission,omitempty"`
	// SummedMax caps the total energy over the horizon as a multiple of
	// NominalValue (full load hours).
	SummedMax *float64 `json:"summedMax,omitempty" yaml:"summed_max,omitempty"`
}

// Value returns a pointer to v, for the optional Flow fields
func Value(v float64) *float64 {
	return &v
}

// Bounded reports whether the flow has a nominal value
func (f Flow) Bounded() bool {
	return f.NominalValue != nil
}

// Port connects a node to a bus through a flow
type Port struct {
	Bus  *Bus
	Flow Flow
}

// Bus is a balancing point for one commodity
type Bus struct {
	label label.Label
}

// NewBus creates a bus
func NewBus(l label.Label) *Bus {
	return &Bus{label: l}
}

func (b *Bus) Label() label.Label { return b.label }
func (b *Bus) Kind() Kind         { return KindBus }
func (b *Bus) Inputs() []Port     { return nil }
func (b *Bus) Outputs() []Port    { return nil }
func (b *Bus) node()              {}

// Source feeds energy into one or more buses
type Source struct {
	label   label.Label
	outputs []Port
}

// NewSource creates a source with the given outbound ports
func NewSource(l label.Label, outputs ...Port) *Source {
	return &Source{label: l, outputs: outputs}
}

func (s *Source) Label() label.Label { return s.label }
func (s *Source) Kind() Kind         { return KindSource }
func (s *Source) Inputs() []Port     { return nil }
func (s *Source) Outputs() []Port    { return s.outputs }
func (s *Source) node()              {}

// Sink draws energy from one or more buses
type Sink struct {
	label  label.Label
	inputs []Port
}

// NewSink creates a sink with the given inbound ports
func NewSink(l label.Label, inputs ...Port) *Sink {
	return &Sink{label: l, inputs: inputs}
}

func (s *Sink) Label() label.Label { return s.label }
func (s *Sink) Kind() Kind         { return KindSink }
func (s *Sink) Inputs() []Port     { return s.inputs }
func (s *Sink) Outputs() []Port    { return nil }
func (s *Sink) node()              {}

// Transformer converts the energy of its inputs into its outputs.
// Lines, power plants, CHP units and heating systems are all transformers.
type Transformer struct {
	label   label.Label
	inputs  []Port
	outputs []Port

	// ConversionFactors holds the output per unit of input, keyed by the
	// label of the output bus.
	ConversionFactors map[label.Label]float64
}

// NewTransformer creates a transformer. Every output port takes its
// conversion factor from the matching entry in factors.
func NewTransformer(l label.Label, inputs, outputs []Port, factors map[label.Label]float64) *Transformer {
	if factors == nil {
		factors = make(map[label.Label]float64)
	}
	return &Transformer{
		label:             l,
		inputs:            inputs,
		outputs:           outputs,
		ConversionFactors: factors,
	}
}

func (t *Transformer) Label() label.Label { return t.label }
func (t *Transformer) Kind() Kind         { return KindTransformer }
func (t *Transformer) Inputs() []Port     { return t.inputs }
func (t *Transformer) Outputs() []Port    { return t.outputs }
func (t *Transformer) node()              {}

// ConversionFactor returns the efficiency towards the given output bus
func (t *Transformer) ConversionFactor(bus label.Label) (float64, bool) {
	f, ok := t.ConversionFactors[bus]
	return f, ok
}

// Storage charges from and discharges into a bus
type Storage struct {
	label label.Label

	// Charge is the inbound port, Discharge the outbound one.
	Charge    Port
	Discharge Port

	NominalCapacity   float64
	InflowConversion  float64
	OutflowConversion float64
	LossRate          float64
	// InitialLevel is left to the solver when nil.
	InitialLevel *float64
}

// NewStorage creates a storage between charge and discharge ports
func NewStorage(l label.Label, charge, discharge Port) *Storage {
	return &Storage{
		label:             l,
		Charge:            charge,
		Discharge:         discharge,
		InflowConversion:  1,
		OutflowConversion: 1,
	}
}

func (s *Storage) Label() label.Label { return s.label }
func (s *Storage) Kind() Kind         { return KindStorage }
func (s *Storage) Inputs() []Port     { return []Port{s.Charge} }
func (s *Storage) Outputs() []Port    { return []Port{s.Discharge} }
func (s *Storage) node()              {}
