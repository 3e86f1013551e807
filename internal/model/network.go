package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
)

// Layer is one trained layer as exported from the training notebook.
// Kernels are stored input-major: Kernel[in][out]. LSTM gates are laid out
// i, f, c, o along the output axis.
type Layer struct {
	Type                string      `json:"type"`
	Activation          string      `json:"activation,omitempty"`
	RecurrentActivation string      `json:"recurrent_activation,omitempty"`
	Units               int         `json:"units,omitempty"`
	ReturnSequences     bool        `json:"return_sequences,omitempty"`
	Kernel              [][]float64 `json:"kernel,omitempty"`
	RecurrentKernel     [][]float64 `json:"recurrent_kernel,omitempty"`
	Bias                []float64   `json:"bias,omitempty"`
}

// Network is an in-process evaluator for an exported sequential model.
type Network struct {
	Name          string  `json:"name"`
	InputFeatures int     `json:"input_features"`
	Layers        []Layer `json:"layers"`
}

const (
	layerLSTM    = "lstm"
	layerDense   = "dense"
	layerFlatten = "flatten"
)

// LoadNetwork reads and validates a network artifact.
func LoadNetwork(path string) (*Network, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}
	var n Network
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact %s: %w", path, err)
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return &n, nil
}

// Validate checks layer shapes against each other. The network must end in
// a single vector with one value per category.
func (n *Network) Validate() error {
	if n.InputFeatures <= 0 {
		return errors.New("input_features must be positive")
	}
	if len(n.Layers) == 0 {
		return errors.New("model has no layers")
	}

	// Inputs are a single time step, so flatten never changes the width.
	width := n.InputFeatures
	for i, l := range n.Layers {
		switch l.Type {
		case layerLSTM:
			if l.Units <= 0 {
				return fmt.Errorf("layer %d: lstm units must be positive", i)
			}
			if err := checkMatrix(l.Kernel, width, 4*l.Units); err != nil {
				return fmt.Errorf("layer %d kernel: %w", i, err)
			}
			if err := checkMatrix(l.RecurrentKernel, l.Units, 4*l.Units); err != nil {
				return fmt.Errorf("layer %d recurrent_kernel: %w", i, err)
			}
			if len(l.Bias) != 4*l.Units {
				return fmt.Errorf("layer %d: bias has %d values, expected %d", i, len(l.Bias), 4*l.Units)
			}
			if _, err := activation(l.Activation, "tanh"); err != nil {
				return fmt.Errorf("layer %d: %w", i, err)
			}
			if _, err := activation(l.RecurrentActivation, "sigmoid"); err != nil {
				return fmt.Errorf("layer %d: %w", i, err)
			}
			width = l.Units
		case layerDense:
			if len(l.Kernel) == 0 {
				return fmt.Errorf("layer %d: dense kernel is empty", i)
			}
			units := len(l.Kernel[0])
			if err := checkMatrix(l.Kernel, width, units); err != nil {
				return fmt.Errorf("layer %d kernel: %w", i, err)
			}
			if len(l.Bias) != units {
				return fmt.Errorf("layer %d: bias has %d values, expected %d", i, len(l.Bias), units)
			}
			if l.Activation != "softmax" {
				if _, err := activation(l.Activation, "linear"); err != nil {
					return fmt.Errorf("layer %d: %w", i, err)
				}
			}
			width = units
		case layerFlatten:
		default:
			return fmt.Errorf("layer %d: unsupported layer type %q", i, l.Type)
		}
	}
	if width != 3 {
		return fmt.Errorf("model output width is %d, expected 3", width)
	}
	return nil
}

func checkMatrix(m [][]float64, rows, cols int) error {
	if len(m) != rows {
		return fmt.Errorf("has %d rows, expected %d", len(m), rows)
	}
	for r, row := range m {
		if len(row) != cols {
			return fmt.Errorf("row %d has %d columns, expected %d", r, len(row), cols)
		}
	}
	return nil
}

// Predict evaluates the network on a single batch. The network is read-only
// so concurrent calls are safe.
func (n *Network) Predict(ctx context.Context, input [][][]float64) ([]float64, error) {
	if len(input) != 1 {
		return nil, fmt.Errorf("expected batch size 1, got %d", len(input))
	}
	seq := input[0]
	if len(seq) == 0 {
		return nil, errors.New("input sequence is empty")
	}
	for t, step := range seq {
		if len(step) != n.InputFeatures {
			return nil, fmt.Errorf("time step %d has %d features, expected %d", t, len(step), n.InputFeatures)
		}
	}

	state := seq
	for i, l := range n.Layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		switch l.Type {
		case layerLSTM:
			state, err = l.lstm(state)
		case layerDense:
			state, err = l.dense(state)
		case layerFlatten:
			state = flatten(state)
		}
		if err != nil {
			return nil, fmt.Errorf("layer %d (%s): %w", i, l.Type, err)
		}
	}
	if len(state) != 1 {
		return nil, fmt.Errorf("model produced %d time steps, expected 1", len(state))
	}
	return state[0], nil
}

func (l Layer) lstm(seq [][]float64) ([][]float64, error) {
	act, err := activation(l.Activation, "tanh")
	if err != nil {
		return nil, err
	}
	recAct, err := activation(l.RecurrentActivation, "sigmoid")
	if err != nil {
		return nil, err
	}

	u := l.Units
	h := make([]float64, u)
	c := make([]float64, u)
	out := make([][]float64, 0, len(seq))
	for _, x := range seq {
		z := make([]float64, 4*u)
		copy(z, l.Bias)
		for j, xv := range x {
			for k, w := range l.Kernel[j] {
				z[k] += xv * w
			}
		}
		for j, hv := range h {
			for k, w := range l.RecurrentKernel[j] {
				z[k] += hv * w
			}
		}
		next := make([]float64, u)
		for k := 0; k < u; k++ {
			in := recAct(z[k])
			forget := recAct(z[u+k])
			cand := act(z[2*u+k])
			outGate := recAct(z[3*u+k])
			c[k] = forget*c[k] + in*cand
			next[k] = outGate * act(c[k])
		}
		h = next
		if l.ReturnSequences {
			out = append(out, next)
		}
	}
	if !l.ReturnSequences {
		out = append(out, h)
	}
	return out, nil
}

func (l Layer) dense(seq [][]float64) ([][]float64, error) {
	out := make([][]float64, len(seq))
	for t, x := range seq {
		y := make([]float64, len(l.Bias))
		copy(y, l.Bias)
		for j, xv := range x {
			for k, w := range l.Kernel[j] {
				y[k] += xv * w
			}
		}
		if l.Activation == "softmax" {
			softmax(y)
		} else {
			act, err := activation(l.Activation, "linear")
			if err != nil {
				return nil, err
			}
			for k := range y {
				y[k] = act(y[k])
			}
		}
		out[t] = y
	}
	return out, nil
}

func flatten(seq [][]float64) [][]float64 {
	var flat []float64
	for _, step := range seq {
		flat = append(flat, step...)
	}
	return [][]float64{flat}
}

func activation(name, fallback string) (func(float64) float64, error) {
	if name == "" {
		name = fallback
	}
	switch name {
	case "linear":
		return func(x float64) float64 { return x }, nil
	case "relu":
		return func(x float64) float64 { return math.Max(0, x) }, nil
	case "tanh":
		return math.Tanh, nil
	case "sigmoid":
		return func(x float64) float64 { return 1 / (1 + math.Exp(-x)) }, nil
	case "hard_sigmoid":
		return func(x float64) float64 { return math.Max(0, math.Min(1, 0.2*x+0.5)) }, nil
	}
	return nil, fmt.Errorf("unsupported activation %q", name)
}

func softmax(v []float64) {
	peak := math.Inf(-1)
	for _, x := range v {
		peak = math.Max(peak, x)
	}
	var sum float64
	for i, x := range v {
		v[i] = math.Exp(x - peak)
		sum += v[i]
	}
	for i := range v {
		v[i] /= sum
	}
}
