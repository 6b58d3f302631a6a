package view_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"kafkaportal/pkg/client/view"
	"kafkaportal/pkg/client/view/mocks"
	"kafkaportal/pkg/domain"
)

type AuditBrowserSuite struct {
	suite.Suite
	ctx    context.Context
	ctrl   *gomock.Controller
	source *mocks.MockAuditSource
	toasts *view.Toasts
}

func TestAuditBrowserSuite(t *testing.T) {
	suite.Run(t, new(AuditBrowserSuite))
}

func (s *AuditBrowserSuite) SetupTest() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.source = mocks.NewMockAuditSource(s.ctrl)
	s.toasts = view.NewToasts(0)
}

func entries(n int) []domain.AuditEntry {
	out := make([]domain.AuditEntry, n)
	for i := range out {
		out[i] = domain.AuditEntry{ID: domain.NewAuditEntryID(), Action: domain.AuditUserLogin}
	}
	return out
}

func (s *AuditBrowserSuite) TestPaging() {
	gomock.InOrder(
		s.source.EXPECT().ListAuditEntries(gomock.Any(), domain.AuditFilter{Limit: 2}).Return(entries(2), nil),
		s.source.EXPECT().ListAuditEntries(gomock.Any(), domain.AuditFilter{Limit: 2, Offset: 2}).Return(entries(1), nil),
		s.source.EXPECT().ListAuditEntries(gomock.Any(), domain.AuditFilter{Limit: 2}).Return(entries(2), nil),
	)

	b := view.NewAuditBrowser(s.source, s.toasts, 2)
	s.Require().NoError(b.Refresh(s.ctx))
	s.True(b.HasNext())
	s.False(b.HasPrev())

	s.Require().NoError(b.Next(s.ctx))
	s.Equal(2, b.State().Filter.Offset)
	s.False(b.HasNext())
	s.Require().NoError(b.Next(s.ctx), "last page is a no-op")

	s.Require().NoError(b.Prev(s.ctx))
	s.Zero(b.State().Filter.Offset)
	s.Require().NoError(b.Prev(s.ctx), "first page is a no-op")
}

func (s *AuditBrowserSuite) TestSetFilterResetsOffset() {
	gomock.InOrder(
		s.source.EXPECT().ListAuditEntries(gomock.Any(), domain.AuditFilter{Limit: 2}).Return(entries(2), nil),
		s.source.EXPECT().ListAuditEntries(gomock.Any(), domain.AuditFilter{Limit: 2, Offset: 2}).Return(entries(2), nil),
		s.source.EXPECT().ListAuditEntries(gomock.Any(), domain.AuditFilter{Limit: 2, EntityType: domain.EntityTopic}).Return(entries(1), nil),
	)

	b := view.NewAuditBrowser(s.source, s.toasts, 2)
	s.Require().NoError(b.Refresh(s.ctx))
	s.Require().NoError(b.Next(s.ctx))
	s.Require().NoError(b.SetFilter(s.ctx, domain.AuditFilter{EntityType: domain.EntityTopic, Offset: 8, Limit: 100}))

	f := b.State().Filter
	s.Zero(f.Offset)
	s.Equal(2, f.Limit)
	s.Len(b.State().Entries, 1)
}

func (s *AuditBrowserSuite) TestFailedPageKeepsState() {
	gomock.InOrder(
		s.source.EXPECT().ListAuditEntries(gomock.Any(), domain.AuditFilter{Limit: 2}).Return(entries(2), nil),
		s.source.EXPECT().ListAuditEntries(gomock.Any(), domain.AuditFilter{Limit: 2, Offset: 2}).Return(nil, errors.New("boom")),
	)

	b := view.NewAuditBrowser(s.source, s.toasts, 2)
	s.Require().NoError(b.Refresh(s.ctx))
	before := b.State()

	s.Error(b.Next(s.ctx))
	s.Equal(before, b.State())
	s.Equal(view.LevelError, s.toasts.Items()[0].Level)
}
