package autodiff

import (
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// TryEval is Eval returning the failure as an error instead of panicking.
func (f *Function) TryEval(args ...*tensor.RawTensor) (result *tensor.RawTensor, err error) {
	if err = exceptions.TryCatch[error](func() { result = f.Eval(args...) }); err != nil {
		return nil, errors.WithMessage(err, "autodiff: eval failed")
	}
	return result, nil
}

// TryEvalAll is EvalAll returning the failure as an error.
func (f *Function) TryEvalAll(args ...*tensor.RawTensor) (results []*tensor.RawTensor, err error) {
	if err = exceptions.TryCatch[error](func() { results = f.EvalAll(args...) }); err != nil {
		return nil, errors.WithMessage(err, "autodiff: eval failed")
	}
	return results, nil
}

// TryGrad is Grad returning the failure as an error.
func (f *Function) TryGrad() (grad *Function, err error) {
	if err = exceptions.TryCatch[error](func() { grad = f.Grad() }); err != nil {
		return nil, errors.WithMessage(err, "autodiff: grad failed")
	}
	return grad, nil
}

// TryTrace is Trace returning a malformed-graph failure as an error.
func TryTrace(build Builder, opts ...Option) (fn *Function, err error) {
	if err = exceptions.TryCatch[error](func() { fn = Trace(build, opts...) }); err != nil {
		return nil, err
	}
	return fn, nil
}
