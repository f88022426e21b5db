package tensor

// Backend defines the numeric operations the autodiff engine evaluates graphs
// with. Every method returns a freshly allocated tensor and never mutates its
// arguments. Shape violations panic.
//
// Implementations:
//   - CPU: pure Go kernels with gonum GEMM (internal/backend/cpu)
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Element-wise unary operations
	Neg(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor  // exponential
	Log(x *RawTensor) *RawTensor  // natural logarithm
	ReLU(x *RawTensor) *RawTensor // max(x, 0)

	// Masks (1 where the predicate holds, else 0)
	PositiveMask(x *RawTensor) *RawTensor // x > 0
	EqualMask(a, b *RawTensor) *RawTensor // a == b, shapes must match

	// MatMul dispatches on operand ranks:
	//   - scalar operand: element-wise product
	//   - (k,) @ (k,): dot product, 0-d result
	//   - (k,) @ (k,n), (m,k) @ (k,): matrix-vector products
	//   - (m,k) @ (k,n): matrix product
	//   - rank > 2: batched product, leading dims broadcast
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor
	SwapAxes(t *RawTensor, a1, a2 int) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor // broadcast to shape

	// Reduction operations
	SumAll(x *RawTensor) *RawTensor                        // total sum (0-d result)
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor // sum along dimension
	MaxDim(x *RawTensor, dim int, keepDim bool) *RawTensor // max along dimension

	// Metadata
	Name() string
	Device() Device
}
