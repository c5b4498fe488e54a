// Package inference - Scoped ONNX Runtime sessions for checkpoint execution.
package inference

import (
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/nodule-ai/go-malignancy/inference/providers"
)

// ModelLoadError indicates a missing, corrupt, or shape-mismatched
// checkpoint. Fatal for the request; the caller may retry after fixing the
// artifact.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("loading model %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// NewSessionArgs represents the arguments for creating a new inference
// session.
type NewSessionArgs struct {
	// CheckpointPath is the serialized model artifact to load.
	CheckpointPath string
	// InputShape is the full input tensor shape including the batch axis.
	InputShape []int64
	// OutputShape is the full output tensor shape including the batch axis.
	OutputShape []int64
	// Provider selects the execution device. Nil falls back to CPU.
	Provider providers.ExecutionProvider
	// InputName and OutputName are the graph node names. Empty defaults to
	// "input"/"output".
	InputName  string
	OutputName string
}

// Session wraps one runnable checkpoint with preallocated input and output
// tensors. A Session holds the accelerator for its lifetime: create it,
// run, and Close it on every exit path.
type Session struct {
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewSession loads the checkpoint at args.CheckpointPath and binds fixed
// input/output tensors for a single batch shape.
//
// Order of operations mirrors the runtime's requirements: library path
// check, environment setup, tensor allocation, session options, execution
// provider, session creation. Evaluation-mode, gradient-free execution is
// inherent to an inference session.
func NewSession(args NewSessionArgs) (*Session, error) {
	if _, err := os.Stat(args.CheckpointPath); err != nil {
		return nil, &ModelLoadError{Path: args.CheckpointPath, Err: err}
	}

	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(providers.GetSharedLibPath())
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("error initializing ORT environment: %w", err)
		}
	}

	input, err := ort.NewEmptyTensor[float32](ort.NewShape(args.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("error creating input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(args.OutputShape...))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("error creating output tensor: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("error creating ORT session options: %w", err)
	}
	defer options.Destroy()

	options.SetIntraOpNumThreads(0)
	options.SetInterOpNumThreads(0)
	options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended)

	if args.Provider != nil && args.Provider.Backend() == providers.CUDAProviderBackend {
		opts, ok := args.Provider.Options().(providers.CUDAOptions)
		if !ok {
			input.Destroy()
			output.Destroy()
			return nil, fmt.Errorf("invalid options type for CUDA: %T", args.Provider.Options())
		}
		cuda, err := opts.ToNativeProviderOptions()
		if err != nil {
			input.Destroy()
			output.Destroy()
			return nil, fmt.Errorf("error converting CUDA options: %w", err)
		}
		defer cuda.Destroy()
		if err := options.AppendExecutionProviderCUDA(cuda); err != nil {
			input.Destroy()
			output.Destroy()
			return nil, fmt.Errorf("error enabling CUDA: %w", err)
		}
	}

	inputName := args.InputName
	if inputName == "" {
		inputName = "input"
	}
	outputName := args.OutputName
	if outputName == "" {
		outputName = "output"
	}

	session, err := ort.NewAdvancedSession(
		args.CheckpointPath,
		[]string{inputName},
		[]string{outputName},
		[]ort.ArbitraryTensor{input},
		[]ort.ArbitraryTensor{output},
		options,
	)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, &ModelLoadError{Path: args.CheckpointPath, Err: err}
	}

	return &Session{
		session: session,
		input:   input,
		output:  output,
	}, nil
}

// Run copies data into the input tensor, executes one forward pass, and
// returns a copy of the output tensor.
func (s *Session) Run(input []float32) ([]float32, error) {
	dst := s.input.GetData()
	if len(input) != len(dst) {
		return nil, fmt.Errorf("input holds %d floats, session tensor needs %d", len(input), len(dst))
	}
	copy(dst, input)

	if err := s.session.Run(); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	out := s.output.GetData()
	result := make([]float32, len(out))
	copy(result, out)
	return result, nil
}

// Close releases the resources associated with the Session.
func (s *Session) Close() error {
	if s.input != nil {
		s.input.Destroy()
		s.input = nil
	}
	if s.output != nil {
		s.output.Destroy()
		s.output = nil
	}
	if s.session != nil {
		if err := s.session.Destroy(); err != nil {
			return fmt.Errorf("error destroying ORT session: %w", err)
		}
		s.session = nil
	}
	return nil
}
