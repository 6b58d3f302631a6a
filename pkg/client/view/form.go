package view

import (
	"context"

	"kafkaportal/pkg/domain"
)

// Submitter is the part of the workflow client the request form uses.
type Submitter interface {
	SubmitTopicRequest(ctx context.Context, details domain.TopicDetails, rationale string) (*domain.Request, error)
	SubmitACLRequest(ctx context.Context, details domain.ACLDetails, rationale string) (*domain.Request, error)
}

// RequestForm submits new topic and ACL requests. Field problems are
// reported as warnings before anything is sent.
type RequestForm struct {
	submitter Submitter
	notifier  Notifier
}

func NewRequestForm(submitter Submitter, notifier Notifier) *RequestForm {
	return &RequestForm{submitter: submitter, notifier: orDiscard(notifier)}
}

func (f *RequestForm) SubmitTopic(ctx context.Context, details domain.TopicDetails, rationale string) (*domain.Request, error) {
	if err := f.check(&details, rationale); err != nil {
		return nil, err
	}
	req, err := f.submitter.SubmitTopicRequest(ctx, details, rationale)
	return f.finish(req, err)
}

func (f *RequestForm) SubmitACL(ctx context.Context, details domain.ACLDetails, rationale string) (*domain.Request, error) {
	if err := f.check(&details, rationale); err != nil {
		return nil, err
	}
	req, err := f.submitter.SubmitACLRequest(ctx, details, rationale)
	return f.finish(req, err)
}

func (f *RequestForm) check(payload domain.Payload, rationale string) error {
	payload.Normalize()
	err := payload.Validate()
	if err == nil {
		err = domain.ValidateRationale(rationale)
	}
	if err != nil {
		notifyFailure(f.notifier, "Please fix the request", err)
	}
	return err
}

func (f *RequestForm) finish(req *domain.Request, err error) (*domain.Request, error) {
	if err != nil {
		notifyFailure(f.notifier, "Failed to submit request", err)
		return nil, err
	}
	f.notifier.Notify(Notification{Level: LevelSuccess, Message: "Request submitted for approval"})
	return req, nil
}
