package usecase

import (
	"context"
	"testing"

	"github.com/estately/estate-service/internal/platform/logger"
	"github.com/estately/estate-service/internal/review/domain"
	"github.com/estately/estate-service/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReviewRepository struct{ mock.Mock }

func (m *MockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}
func (m *MockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}
func (m *MockReviewRepository) FindByPostTo(ctx context.Context, userID string) ([]*domain.Review, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Review), args.Error(1)
}
func (m *MockReviewRepository) GetReputationSummary(ctx context.Context, userID string) (*domain.ReputationSummary, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReputationSummary), args.Error(1)
}

type MockProfileRepository struct{ mock.Mock }

func (m *MockProfileRepository) GetProfile(ctx context.Context, userID string) (*user.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Profile), args.Error(1)
}
func (m *MockProfileRepository) GetProfiles(ctx context.Context, userIDs []string) (map[string]*user.Profile, error) {
	args := m.Called(ctx, userIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*user.Profile), args.Error(1)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	args := m.Called(ctx, subject, data)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) SendReviewReceivedEmail(toEmail, reviewerName string, rating int32) error {
	args := m.Called(toEmail, reviewerName, rating)
	return args.Error(0)
}

func newTestUsecase(repo *MockReviewRepository, users *MockProfileRepository, pub *MockPublisher, notifier *MockNotifier, allowSelfReview bool) *ReviewUsecase {
	var publisher EventPublisher
	if pub != nil {
		publisher = pub
	}
	var n Notifier
	if notifier != nil {
		n = notifier
	}
	return NewReviewUsecase(repo, users, publisher, n, allowSelfReview, logger.NewLogger())
}

func TestReviewUsecase_Submit_ReviewerFromIdentity(t *testing.T) {
	repo := new(MockReviewRepository)
	users := new(MockProfileRepository)
	uc := newTestUsecase(repo, users, nil, nil, true)

	users.On("GetProfile", mock.Anything, "u2").Return(&user.Profile{ID: "u2", Username: "dana"}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Review) bool {
		return r.PostByID == "u1" && r.PostToID == "u2" && r.Rating == 4
	})).Return(nil)

	review, err := uc.Submit(context.Background(), "u1", SubmitReviewInput{
		PostToID: "u2",
		Rating:   4,
		Review:   "Responsive and fair",
		Grade:    domain.GradeGood,
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", review.PostByID)
	repo.AssertExpectations(t)
}

func TestReviewUsecase_Submit_RejectsBadRating(t *testing.T) {
	repo := new(MockReviewRepository)
	uc := newTestUsecase(repo, new(MockProfileRepository), nil, nil, true)

	for _, rating := range []int32{0, 6, -1} {
		_, err := uc.Submit(context.Background(), "u1", SubmitReviewInput{PostToID: "u2", Rating: rating})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewUsecase_Submit_SelfReviewPolicy(t *testing.T) {
	repo := new(MockReviewRepository)
	users := new(MockProfileRepository)

	uc := newTestUsecase(repo, users, nil, nil, false)
	_, err := uc.Submit(context.Background(), "u1", SubmitReviewInput{PostToID: "u1", Rating: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ucPermissive := newTestUsecase(repo, users, nil, nil, true)
	users.On("GetProfile", mock.Anything, "u1").Return(&user.Profile{ID: "u1"}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	_, err = ucPermissive.Submit(context.Background(), "u1", SubmitReviewInput{PostToID: "u1", Rating: 5})
	assert.NoError(t, err)
}

func TestReviewUsecase_Submit_UnknownTarget(t *testing.T) {
	repo := new(MockReviewRepository)
	users := new(MockProfileRepository)
	uc := newTestUsecase(repo, users, nil, nil, true)

	users.On("GetProfile", mock.Anything, "ghost").Return(nil, user.ErrUserNotFound)

	_, err := uc.Submit(context.Background(), "u1", SubmitReviewInput{PostToID: "ghost", Rating: 3})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewUsecase_Submit_DuplicatePassthrough(t *testing.T) {
	repo := new(MockReviewRepository)
	users := new(MockProfileRepository)
	uc := newTestUsecase(repo, users, nil, nil, true)

	users.On("GetProfile", mock.Anything, "u2").Return(&user.Profile{ID: "u2"}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrReviewAlreadyExists)

	_, err := uc.Submit(context.Background(), "u1", SubmitReviewInput{PostToID: "u2", Rating: 5})
	assert.ErrorIs(t, err, domain.ErrReviewAlreadyExists)
}

func TestReviewUsecase_Submit_NotifiesReviewee(t *testing.T) {
	repo := new(MockReviewRepository)
	users := new(MockProfileRepository)
	notifier := new(MockNotifier)
	uc := newTestUsecase(repo, users, nil, notifier, true)

	users.On("GetProfile", mock.Anything, "u2").Return(&user.Profile{ID: "u2", Email: "dana@example.com"}, nil)
	users.On("GetProfile", mock.Anything, "u1").Return(&user.Profile{ID: "u1", Username: "askar"}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	notifier.On("SendReviewReceivedEmail", "dana@example.com", "askar", int32(5)).Return(nil)

	_, err := uc.Submit(context.Background(), "u1", SubmitReviewInput{PostToID: "u2", Rating: 5})
	require.NoError(t, err)
	notifier.AssertExpectations(t)
}

func TestReviewUsecase_Submit_NotifyFailureIsNotFatal(t *testing.T) {
	repo := new(MockReviewRepository)
	users := new(MockProfileRepository)
	notifier := new(MockNotifier)
	uc := newTestUsecase(repo, users, nil, notifier, true)

	users.On("GetProfile", mock.Anything, mock.Anything).Return(&user.Profile{ID: "u2", Email: "dana@example.com"}, nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	notifier.On("SendReviewReceivedEmail", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	_, err := uc.Submit(context.Background(), "u1", SubmitReviewInput{PostToID: "u2", Rating: 5})
	assert.NoError(t, err)
}

func TestReviewUsecase_Get_EnrichesProfiles(t *testing.T) {
	repo := new(MockReviewRepository)
	users := new(MockProfileRepository)
	uc := newTestUsecase(repo, users, nil, nil, true)

	repo.On("GetByID", mock.Anything, "r1").Return(&domain.Review{ID: "r1", PostByID: "u1", PostToID: "u2", Rating: 5}, nil)
	users.On("GetProfiles", mock.Anything, []string{"u1", "u2"}).Return(map[string]*user.Profile{
		"u1": {ID: "u1", Username: "askar", Avatar: "a.png"},
		"u2": {ID: "u2", Username: "dana", Email: "dana@example.com"},
	}, nil)

	review, err := uc.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "askar", review.PostBy.Username)
	assert.Equal(t, "dana@example.com", review.PostTo.Email)
}

func TestReviewUsecase_Get_NotFound(t *testing.T) {
	repo := new(MockReviewRepository)
	uc := newTestUsecase(repo, new(MockProfileRepository), nil, nil, true)

	repo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	_, err := uc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewUsecase_ListReceived_BatchesProfileLookups(t *testing.T) {
	repo := new(MockReviewRepository)
	users := new(MockProfileRepository)
	uc := newTestUsecase(repo, users, nil, nil, true)

	reviews := []*domain.Review{
		{ID: "r1", PostByID: "u1", PostToID: "u3"},
		{ID: "r2", PostByID: "u2", PostToID: "u3"},
	}
	repo.On("FindByPostTo", mock.Anything, "u3").Return(reviews, nil)
	users.On("GetProfiles", mock.Anything, []string{"u1", "u3", "u2"}).Return(map[string]*user.Profile{
		"u1": {ID: "u1", Username: "askar"},
		"u2": {ID: "u2", Username: "dana"},
		"u3": {ID: "u3", Username: "miras"},
	}, nil)

	out, err := uc.ListReceived(context.Background(), "u3")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "askar", out[0].PostBy.Username)
	assert.Equal(t, "miras", out[0].PostTo.Username)
	users.AssertNumberOfCalls(t, "GetProfiles", 1)
}

func TestReviewUsecase_Summary_EmptyIsZero(t *testing.T) {
	repo := new(MockReviewRepository)
	uc := newTestUsecase(repo, new(MockProfileRepository), nil, nil, true)

	repo.On("GetReputationSummary", mock.Anything, "u1").Return(&domain.ReputationSummary{}, nil)

	summary, err := uc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, summary.AverageRating)
	assert.Zero(t, summary.TotalReviews)
}

func TestReviewUsecase_Summary_MeanOfRatings(t *testing.T) {
	repo := new(MockReviewRepository)
	uc := newTestUsecase(repo, new(MockProfileRepository), nil, nil, true)

	repo.On("GetReputationSummary", mock.Anything, "u1").
		Return(&domain.ReputationSummary{AverageRating: 4, TotalReviews: 2}, nil)

	summary, err := uc.Summary(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, float64(4), summary.AverageRating)
	assert.Equal(t, int64(2), summary.TotalReviews)
}
