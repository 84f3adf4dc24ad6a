package optim

import "github.com/born-ml/bislice/internal/tensor"

// SGD implements Stochastic Gradient Descent with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*tensor.RawTensor
	lr         float32
	momentum   float32
	velocities map[*tensor.RawTensor][]float32
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer over float32 params.
func NewSGD(params []*tensor.RawTensor, config SGDConfig) (*SGD, error) {
	if err := checkParams(params); err != nil {
		return nil, err
	}
	if config.LR == 0 {
		config.LR = 0.01
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*tensor.RawTensor][]float32),
	}, nil
}

// Step performs a single optimization step.
func (s *SGD) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		data := param.AsFloat32()
		if s.momentum == 0 {
			for i, g := range grad {
				data[i] -= s.lr * g
			}
			continue
		}

		velocity, ok := s.velocities[param]
		if !ok {
			velocity = make([]float32, len(data))
			s.velocities[param] = velocity
		}
		for i, g := range grad {
			velocity[i] = s.momentum*velocity[i] + g
			data[i] -= s.lr * velocity[i]
		}
	}
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}
