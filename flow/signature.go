package flow

import (
	"context"
	"strings"

	"github.com/jmcleod/authbox/session"
)

// signatureStep saves the drawn signature. Depending on deployment policy
// the image is either sent to the collaborator (which stores it and
// returns the file path) or kept as a local artifact blob. The pad is
// tracked in the sensor status but has never gated this step.
type signatureStep struct{}

func (s *signatureStep) ID() StepID { return StepSignature }

func (s *signatureStep) Mode() Mode { return CaptureOnly }

func (s *signatureStep) Enter(ctx context.Context, rt *Runtime) error { return nil }

func (s *signatureStep) Act(ctx context.Context, rt *Runtime, in Input) (Evidence, error) {
	img := strings.TrimSpace(in.SignatureImage)
	if img == "" {
		return nil, &PreconditionError{Reason: "signature is required"}
	}

	ref := img
	if rt.Config.VerifySignature {
		path, err := rt.Client.VerifySignature(ctx, img)
		if err != nil {
			return nil, err
		}
		ref = path
	}

	return func(st *session.Store) error {
		return st.SetSignature(ref)
	}, nil
}

func (s *signatureStep) Exit(rt *Runtime) {}
