package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/otplogin/internal/auth/entity"
	"github.com/shandysiswandi/otplogin/internal/auth/policy"
	"github.com/shandysiswandi/otplogin/internal/pkg/clock"
	"github.com/shandysiswandi/otplogin/internal/pkg/goerror"
	"github.com/shandysiswandi/otplogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otplogin/internal/pkg/jwt"
	"github.com/shandysiswandi/otplogin/internal/pkg/uid"
	"github.com/shandysiswandi/otplogin/internal/pkg/validator"
)

// OtpIssuedEvent carries a freshly issued code to the delivery side.
type OtpIssuedEvent struct {
	EventID     string
	RecordID    int64
	Channel     entity.IdentifierKind
	Destination string
	Code        string
	ExpiresIn   time.Duration
	IssuedAt    time.Time
}

type repoMessaging interface {
	PublishOtpIssued(ctx context.Context, msg OtpIssuedEvent) error
}

type repoDB interface {
	MutateCredential(ctx context.Context, in entity.MutateCredential, fn entity.MutateFunc) error
	GetCredentialByID(ctx context.Context, id int64) (*entity.CredentialRecord, error)
}

type policyEngine interface {
	Config() policy.Config
	EvaluateIssuance(ctx context.Context, rec entity.CredentialRecord, now time.Time) (policy.Decision, error)
	EvaluateVerification(ctx context.Context, rec *entity.CredentialRecord, candidate string, now time.Time) policy.Decision
}

type Usecase struct {
	repoDB        repoDB
	repoMessaging repoMessaging
	policy        policyEngine
	validator     validator.Validator
	uid           uid.NumberID
	uuid          uid.StringID
	clock         clock.Clocker
	jwt           jwt.JWT
	ins           instrument.Instrumentation
	exposeDevCode bool
}

type Dependency struct {
	RepoDB        repoDB
	RepoMessaging repoMessaging
	Policy        policyEngine
	Validator     validator.Validator
	UID           uid.NumberID
	UUID          uid.StringID
	Clock         clock.Clocker
	JWT           jwt.JWT
	Instrument    instrument.Instrumentation
	// ExposeDevCode echoes issued codes in responses. Development only.
	ExposeDevCode bool
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMessaging: dep.RepoMessaging,
		policy:        dep.Policy,
		validator:     dep.Validator,
		uid:           dep.UID,
		uuid:          dep.UUID,
		clock:         dep.Clock,
		jwt:           dep.JWT,
		ins:           dep.Instrument,
		exposeDevCode: dep.ExposeDevCode,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("auth.usecase").Start(ctx, name)
}

func errLocked(remaining time.Duration) error {
	return goerror.NewThrottled(
		fmt.Sprintf("Too many attempts. Try again in %ds.", clock.CeilSeconds(remaining)),
		goerror.CodeLocked,
		remaining,
	)
}

func errMalformedIdentifier() error {
	return goerror.NewInvalidInput(nil, "identifier", "Invalid identifier")
}
