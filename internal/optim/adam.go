package optim

import (
	"github.com/born-ml/bislice/internal/tensor"
	"github.com/chewxy/math32"
)

// Adam implements the Adam (Adaptive Moment Estimation) optimizer.
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * gradient
//	v_t = beta2 * v_{t-1} + (1-beta2) * gradient²
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param = param - lr * m_hat / (sqrt(v_hat) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014)
type Adam struct {
	params []*tensor.RawTensor
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	t      int                             // Timestep for bias correction
	m      map[*tensor.RawTensor][]float32 // First moment estimates
	v      map[*tensor.RawTensor][]float32 // Second moment estimates
}

// AdamConfig holds configuration for Adam optimizer.
type AdamConfig struct {
	LR    float32    // Learning rate (default: 0.001)
	Betas [2]float32 // Coefficients for computing running averages (default: [0.9, 0.999])
	Eps   float32    // Term for numerical stability (default: 1e-8)
}

// NewAdam creates a new Adam optimizer over float32 params. Zero config
// fields take their defaults.
func NewAdam(params []*tensor.RawTensor, config AdamConfig) (*Adam, error) {
	if err := checkParams(params); err != nil {
		return nil, err
	}
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}

	return &Adam{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make(map[*tensor.RawTensor][]float32),
		v:      make(map[*tensor.RawTensor][]float32),
	}, nil
}

// Step performs a single optimization step. Parameters with no gradient are
// skipped but the timestep still advances.
func (a *Adam) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++
	biasCorrection1 := 1 - math32.Pow(a.beta1, float32(a.t))
	biasCorrection2 := 1 - math32.Pow(a.beta2, float32(a.t))

	for _, param := range a.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		data := param.AsFloat32()
		m, ok := a.m[param]
		if !ok {
			m = make([]float32, len(data))
			a.m[param] = m
		}
		v, ok := a.v[param]
		if !ok {
			v = make([]float32, len(data))
			a.v[param] = v
		}

		for i, g := range grad {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g
			v[i] = a.beta2*v[i] + (1-a.beta2)*g*g
			mHat := m[i] / biasCorrection1
			vHat := v[i] / biasCorrection2
			data[i] -= a.lr * mHat / (math32.Sqrt(vHat) + a.eps)
		}
	}
}

// GetLR returns the current learning rate.
func (a *Adam) GetLR() float32 {
	return a.lr
}
