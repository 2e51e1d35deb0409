package script

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Normalizer turns raw model replies into questions that satisfy the policy.
// It holds no per-call state and is safe for concurrent use.
type Normalizer struct {
	policy Policy
	log    *zap.Logger
}

type Option func(*Normalizer)

func WithLogger(l *zap.Logger) Option {
	return func(n *Normalizer) {
		if l != nil {
			n.log = l
		}
	}
}

func WithPolicy(p Policy) Option {
	return func(n *Normalizer) { n.policy = p }
}

func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{policy: DefaultPolicy, log: zap.NewNop()}
	for _, o := range opts {
		o(n)
	}
	return n
}

func (n *Normalizer) Policy() Policy { return n.policy }

// Question normalizes a reply that should contain a single question.
//
//	Start → Extracted → Decoded → Validated → Done
//	extract/decode failure → Salvage → Complete → Done
//	validation failure     → Complete → Done
func (n *Normalizer) Question(raw string, o Overrides) (Question, error) {
	obj, err := n.extractDecode(raw)
	if errors.Is(err, ErrEmptyInput) {
		return Question{}, err
	}
	if err != nil {
		return n.salvageOne(raw, o, err)
	}

	if !obj.hasIdentity() {
		n.log.Debug("decoded reply lacks identity fields; salvaging")
		return n.salvageOne(raw, o, nil)
	}
	return n.settle(obj, o)
}

// QuestionSet normalizes a reply that should contain {"questions": [...]}.
func (n *Normalizer) QuestionSet(raw string, o Overrides) (QuestionSet, error) {
	obj, err := n.extractDecode(raw)
	if errors.Is(err, ErrEmptyInput) {
		return QuestionSet{}, err
	}
	if err != nil {
		return n.salvageSet(raw, o, err)
	}

	members, ok := obj.questions()
	if !ok {
		n.log.Debug("decoded reply has no questions array; salvaging")
		return n.salvageSet(raw, o, nil)
	}

	var set QuestionSet
	for i, m := range members {
		if !m.hasIdentity() {
			n.log.Warn("dropping question without identity fields", zap.Int("index", i))
			continue
		}
		q, err := n.settle(m, o)
		if err != nil {
			n.log.Warn("dropping question", zap.Int("index", i), zap.Error(err))
			continue
		}
		set.Questions = append(set.Questions, q)
	}
	if len(set.Questions) == 0 {
		return n.salvageSet(raw, o, nil)
	}
	return set, nil
}

// Complete exposes the completer for callers that already hold a question,
// e.g. offline fallbacks.
func (n *Normalizer) Complete(q Question, target Controls) Question {
	return n.policy.Complete(q, target)
}

func (n *Normalizer) extractDecode(raw string) (candidate, error) {
	payload, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	obj, err := decodeObject(payload)
	if err != nil {
		n.log.Debug("extracted payload does not decode", zap.Error(err), zap.Int("len", len(payload)))
		return nil, err
	}
	return obj, nil
}

// settle validates obj and falls back to the completer on failure. The
// completed result is re-validated; a failure there is a bug in the banks or
// policy and is reported rather than returned silently.
func (n *Normalizer) settle(obj candidate, o Overrides) (Question, error) {
	q, err := n.policy.Validate(obj, o)
	if err == nil {
		return q, nil
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return Question{}, err
	}

	target := obj.resolve(o)
	n.log.Debug("completing question",
		zap.String("field", verr.Field),
		zap.String("reason", verr.Reason),
		zap.String("breadth", string(target.Breadth)),
		zap.Int("depth", int(target.Depth)),
		zap.String("persona", string(target.Persona)))

	done := n.policy.Complete(obj.question(), target)
	if err := n.policy.ValidateQuestion(done, target); err != nil {
		return Question{}, fmt.Errorf("%w: completion failed: %w", ErrUnrecoverablePayload, err)
	}
	return done, nil
}

func (n *Normalizer) salvageOne(raw string, o Overrides, cause error) (Question, error) {
	q, err := Salvage(raw)
	if err != nil {
		return Question{}, n.unrecoverable(cause)
	}
	target := resolveControls(o)
	n.log.Info("salvaged question from undecodable reply", zap.Int("id", q.ID), zap.NamedError("cause", cause))
	return n.policy.Complete(q, target), nil
}

func (n *Normalizer) salvageSet(raw string, o Overrides, cause error) (QuestionSet, error) {
	qs, err := SalvageAll(raw)
	if err != nil {
		return QuestionSet{}, n.unrecoverable(cause)
	}
	target := resolveControls(o)
	n.log.Info("salvaged questions from undecodable reply", zap.Int("count", len(qs)), zap.NamedError("cause", cause))
	set := QuestionSet{Questions: make([]Question, 0, len(qs))}
	for _, q := range qs {
		set.Questions = append(set.Questions, n.policy.Complete(q, target))
	}
	return set, nil
}

func (n *Normalizer) unrecoverable(cause error) error {
	n.log.Warn("reply is unrecoverable", zap.NamedError("cause", cause))
	if errors.Is(cause, ErrNoStructureFound) {
		return fmt.Errorf("%w: %w", ErrUnrecoverablePayload, ErrNoStructureFound)
	}
	return ErrUnrecoverablePayload
}
