package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/showcase/pkg/auth"
	"github.com/ghuser/showcase/pkg/logger"
	"github.com/ghuser/showcase/pkg/storage/storagetest"
	productdomain "github.com/ghuser/showcase/services/product/domain"
	"github.com/ghuser/showcase/services/product/domain/events"
	"github.com/ghuser/showcase/services/product/domain/models"
	domainsvcs "github.com/ghuser/showcase/services/product/domain/services"
	"github.com/ghuser/showcase/services/product/infrastructure/persistence/memory"
)

var (
	member = auth.Caller{UserID: "user_1", OrgID: "org_1", Email: "maker@example.com"}
	admin  = auth.Caller{UserID: "user_admin", OrgID: "org_1", Email: "admin@example.com", IsAdmin: true}
	fixed  = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

func newMutation(ps ...*models.Product) (*MutationService, *memory.ProductRepository, *storagetest.MemStore) {
	repo := memory.NewProductRepository(ps...)
	images := storagetest.NewMemStore()
	svc := NewMutationService(MutationDeps{
		Repo:   repo,
		Images: images,
		Logger: logger.Discard(),
		Now:    func() time.Time { return fixed },
	})
	return svc, repo, images
}

func validInput() SubmitInput {
	return SubmitInput{
		Name:        "Showcase Widget",
		Slug:        "showcase-widget",
		Tagline:     "Widgets for everyone",
		Description: "A widget that showcases other widgets.",
		WebURL:      "https://widget.example.com",
		Tags:        []string{"tools", "widgets"},
		Image: &ImageUpload{
			Filename:     "logo.png",
			DeclaredType: "image/png",
			Data:         pngBytes,
		},
	}
}

func TestSubmitProduct_StoresPendingProduct(t *testing.T) {
	svc, repo, images := newMutation()

	p, err := svc.SubmitProduct(context.Background(), member, validInput())
	require.NoError(t, err)

	stored := repo.Get(p.ID)
	require.NotNil(t, stored)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, 0, stored.VoteCount)
	assert.Regexp(t, `^[a-z0-9-]{3,60}$`, stored.Slug.String())
	assert.Equal(t, "maker@example.com", stored.SubmittedBy)
	assert.Equal(t, "user_1", stored.UserID)
	require.NotNil(t, stored.OrganizationID)
	assert.Equal(t, "org_1", *stored.OrganizationID)
	assert.Equal(t, []string{"tools", "widgets"}, stored.Tags)
	assert.True(t, strings.HasPrefix(stored.WebImage, storagetest.BaseURL+"/products/"))
	assert.True(t, strings.HasSuffix(stored.WebImage, ".png"))
	assert.Nil(t, stored.ApprovedAt)
	assert.Equal(t, 1, images.Len())
	assert.Equal(t, []string{events.TopicProductSubmitted}, repo.Topics())
}

func TestSubmitProduct_AnonymousLabelWithoutEmail(t *testing.T) {
	svc, repo, _ := newMutation()
	caller := member
	caller.Email = ""

	p, err := svc.SubmitProduct(context.Background(), caller, validInput())
	require.NoError(t, err)
	assert.Equal(t, "anonymous", repo.Get(p.ID).SubmittedBy)
}

func TestSubmitProduct_Preconditions(t *testing.T) {
	tests := []struct {
		name   string
		caller auth.Caller
		want   error
	}{
		{"signed out", auth.Caller{}, productdomain.ErrUnauthenticated},
		{"no organization", auth.Caller{UserID: "user_1"}, productdomain.ErrNoOrganization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, images := newMutation()
			_, err := svc.SubmitProduct(context.Background(), tt.caller, validInput())
			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, repo.Len())
			assert.Zero(t, images.Len())
		})
	}
}

func TestSubmitProduct_Validation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*SubmitInput)
		wantMsg   string
		wantField string
	}{
		{"name required", func(in *SubmitInput) { in.Name = "" }, "Project name is required", "name"},
		{"name short", func(in *SubmitInput) { in.Name = "ab" }, "Project name must contain at least 3 characters", "name"},
		{"name long", func(in *SubmitInput) { in.Name = strings.Repeat("n", 51) }, "Project name must not exceed 50 characters", "name"},
		{"slug alphabet", func(in *SubmitInput) { in.Slug = "Bad Slug" }, "Slug may contain only lowercase letters, numbers, and hyphens", "slug"},
		{"slug short", func(in *SubmitInput) { in.Slug = "ab" }, "Slug must contain at least 3 characters", "slug"},
		{"slug long", func(in *SubmitInput) { in.Slug = strings.Repeat("s", 61) }, "Slug must not exceed 60 characters", "slug"},
		{"tagline short", func(in *SubmitInput) { in.Tagline = "hey" }, "Tagline must contain at least 5 characters", "tagline"},
		{"description short", func(in *SubmitInput) { in.Description = "too short" }, "Description must contain at least 10 characters", "description"},
		{"description long", func(in *SubmitInput) { in.Description = strings.Repeat("d", 1001) }, "Description must not exceed 1000 characters", "description"},
		{"web url malformed", func(in *SubmitInput) { in.WebURL = "not a url" }, "Please enter a valid website URL", "web_url"},
		{"no tags", func(in *SubmitInput) { in.Tags = nil }, "Please add at least one tag", "tags"},
		{"six tags", func(in *SubmitInput) { in.Tags = []string{"a", "b", "c", "d", "e", "f"} }, "You can add up to 5 tags only", "tags"},
		{"blank tag", func(in *SubmitInput) { in.Tags = []string{"ok", ""} }, "Tags must not be empty", "tags"},
		{"image missing", func(in *SubmitInput) { in.Image = nil }, domainsvcs.MsgImageMissing, "image"},
		{"image too big", func(in *SubmitInput) { in.Image.Size = domainsvcs.MaxImageSize + 1 }, domainsvcs.MsgImageTooBig, "image"},
		{"image declared type", func(in *SubmitInput) { in.Image.DeclaredType = "image/gif" }, domainsvcs.MsgImageType, "image"},
		{"image content is not an image", func(in *SubmitInput) { in.Image.Data = []byte("<html>hello</html>") }, domainsvcs.MsgImageType, "image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, images := newMutation()
			in := validInput()
			tt.mutate(&in)

			_, err := svc.SubmitProduct(context.Background(), member, in)
			var verr *productdomain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.ErrorIs(t, err, productdomain.ErrInvalidProduct)
			assert.Equal(t, tt.wantMsg, verr.Message)
			assert.Equal(t, tt.wantMsg, verr.Fields[tt.wantField])
			assert.Zero(t, repo.Len(), "nothing stored")
			assert.Zero(t, images.Len(), "nothing uploaded")
		})
	}
}

func TestSubmitProduct_FiveTagsAccepted(t *testing.T) {
	svc, _, _ := newMutation()
	in := validInput()
	in.Tags = []string{"a", "b", "c", "d", "e"}
	_, err := svc.SubmitProduct(context.Background(), member, in)
	assert.NoError(t, err)
}

func TestSubmitProduct_FirstViolationInFieldOrder(t *testing.T) {
	svc, _, _ := newMutation()
	in := validInput()
	in.Tags = nil
	in.Name = "x"
	in.Image = nil

	_, err := svc.SubmitProduct(context.Background(), member, in)
	var verr *productdomain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Project name must contain at least 3 characters", verr.Message)
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, verr.Fields, "tags")
	assert.Contains(t, verr.Fields, "image")
}

func TestSubmitProduct_SlugCollision(t *testing.T) {
	existing := product("showcase-widget", models.StatusApproved, 4, 1)
	svc, repo, images := newMutation(existing)

	_, err := svc.SubmitProduct(context.Background(), member, validInput())
	assert.ErrorIs(t, err, productdomain.ErrSlugTaken)

	stored := repo.Get(existing.ID)
	assert.Equal(t, existing, stored, "existing row is unchanged")
	assert.Equal(t, 1, repo.Len())
	assert.Zero(t, images.Len(), "uploaded image is removed again")
	assert.Len(t, images.Deleted(), 1)
}

func TestSubmitProduct_InsertFailureRemovesImage(t *testing.T) {
	svc, repo, images := newMutation()
	repo.CreateErr = errors.New("connection reset")

	_, err := svc.SubmitProduct(context.Background(), member, validInput())
	require.Error(t, err)
	assert.NotErrorIs(t, err, productdomain.ErrSlugTaken)
	assert.Zero(t, images.Len())
}

func TestSubmitProduct_UploadFailureStoresNothing(t *testing.T) {
	svc, repo, images := newMutation()
	images.UploadErr = errors.New("bucket unavailable")

	_, err := svc.SubmitProduct(context.Background(), member, validInput())
	assert.ErrorIs(t, err, productdomain.ErrImageUpload)
	assert.Zero(t, repo.Len())
}

func TestVotes(t *testing.T) {
	ctx := context.Background()

	t.Run("upvote increments", func(t *testing.T) {
		p := product("voted", models.StatusApproved, 2, 1)
		svc, _, _ := newMutation(p)
		n, err := svc.Upvote(ctx, member, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
	})

	t.Run("downvote at zero stays zero and succeeds", func(t *testing.T) {
		p := product("unloved", models.StatusApproved, 0, 1)
		svc, repo, _ := newMutation(p)
		n, err := svc.Downvote(ctx, member, p.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, n)
		assert.Equal(t, 0, repo.Get(p.ID).VoteCount)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, _, _ := newMutation()
		_, err := svc.Upvote(ctx, member, uuid.New())
		assert.ErrorIs(t, err, productdomain.ErrProductNotFound)
	})

	t.Run("signed out", func(t *testing.T) {
		p := product("voted", models.StatusApproved, 2, 1)
		svc, repo, _ := newMutation(p)
		_, err := svc.Upvote(ctx, auth.Caller{}, p.ID)
		assert.ErrorIs(t, err, productdomain.ErrUnauthenticated)
		assert.Equal(t, 2, repo.Get(p.ID).VoteCount)
	})

	t.Run("no organization", func(t *testing.T) {
		p := product("voted", models.StatusApproved, 2, 1)
		svc, _, _ := newMutation(p)
		_, err := svc.Downvote(ctx, auth.Caller{UserID: "user_1"}, p.ID)
		assert.ErrorIs(t, err, productdomain.ErrNoOrganization)
	})

	t.Run("concurrent votes are all counted", func(t *testing.T) {
		p := product("popular", models.StatusApproved, 0, 1)
		svc, repo, _ := newMutation(p)
		var wg sync.WaitGroup
		for range 50 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = svc.Upvote(ctx, member, p.ID)
			}()
		}
		wg.Wait()
		assert.Equal(t, 50, repo.Get(p.ID).VoteCount)
	})

	t.Run("concurrent downvotes past zero all succeed", func(t *testing.T) {
		p := product("sinking", models.StatusApproved, 3, 1)
		svc, repo, _ := newMutation(p)
		var wg sync.WaitGroup
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				n, err := svc.Downvote(ctx, member, p.ID)
				assert.NoError(t, err)
				assert.GreaterOrEqual(t, n, 0)
			}()
		}
		wg.Wait()
		assert.Equal(t, 0, repo.Get(p.ID).VoteCount)
	})
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("approve stamps approved_at", func(t *testing.T) {
		p := product("queued", models.StatusPending, 0, 1)
		svc, repo, _ := newMutation(p)

		got, err := svc.UpdateStatus(ctx, admin, p.ID, "approved")
		require.NoError(t, err)
		assert.Equal(t, models.StatusApproved, got.Status)
		stored := repo.Get(p.ID)
		require.NotNil(t, stored.ApprovedAt)
		assert.Equal(t, fixed, *stored.ApprovedAt)
		assert.Equal(t, fixed, stored.UpdatedAt)
	})

	t.Run("leaving approved keeps approved_at", func(t *testing.T) {
		p := product("live", models.StatusApproved, 0, 1)
		approvedAt := *p.ApprovedAt
		svc, repo, _ := newMutation(p)

		_, err := svc.UpdateStatus(ctx, admin, p.ID, "rejected")
		require.NoError(t, err)
		stored := repo.Get(p.ID)
		assert.Equal(t, models.StatusRejected, stored.Status)
		require.NotNil(t, stored.ApprovedAt)
		assert.Equal(t, approvedAt, *stored.ApprovedAt)
		assert.Equal(t, fixed, stored.UpdatedAt)
	})

	t.Run("invalid status", func(t *testing.T) {
		p := product("queued", models.StatusPending, 0, 1)
		svc, _, _ := newMutation(p)
		_, err := svc.UpdateStatus(ctx, admin, p.ID, "archived")
		assert.ErrorIs(t, err, productdomain.ErrInvalidStatus)
	})

	t.Run("unknown product", func(t *testing.T) {
		svc, _, _ := newMutation()
		_, err := svc.UpdateStatus(ctx, admin, uuid.New(), "approved")
		assert.ErrorIs(t, err, productdomain.ErrProductNotFound)
	})
}

func TestModeration_RequiresAdmin(t *testing.T) {
	ctx := context.Background()
	callers := []struct {
		name   string
		caller auth.Caller
		want   error
	}{
		{"signed out", auth.Caller{}, productdomain.ErrUnauthenticated},
		{"member", member, productdomain.ErrForbidden},
	}
	for _, c := range callers {
		t.Run(c.name, func(t *testing.T) {
			p := product("queued", models.StatusPending, 0, 1)
			svc, repo, _ := newMutation(p)

			_, err := svc.UpdateStatus(ctx, c.caller, p.ID, "approved")
			assert.ErrorIs(t, err, c.want)

			_, err = svc.BulkUpdateStatus(ctx, c.caller, []uuid.UUID{p.ID}, "approved")
			assert.ErrorIs(t, err, c.want)

			err = svc.DeleteProduct(ctx, c.caller, p.ID)
			assert.ErrorIs(t, err, c.want)

			assert.Equal(t, p, repo.Get(p.ID), "no storage mutation")
			assert.Empty(t, repo.Topics())
		})
	}
}

func TestBulkUpdateStatus_ReportsPerID(t *testing.T) {
	a := product("a-one", models.StatusPending, 0, 1)
	b := product("a-two", models.StatusPending, 0, 2)
	broken := product("a-three", models.StatusPending, 0, 3)
	missing := uuid.New()
	svc, repo, _ := newMutation(a, b, broken)
	repo.UpdateErr[broken.ID] = errors.New("deadlock detected")

	res, err := svc.BulkUpdateStatus(context.Background(), admin, []uuid.UUID{a.ID, missing, broken.ID, b.ID, a.ID}, "approved")
	require.NoError(t, err)

	assert.Equal(t, models.StatusApproved, res.Status)
	require.Len(t, res.Items, 4, "duplicates processed once")
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 2, res.Failed)
	assert.False(t, res.OK())

	assert.Equal(t, BatchItem{ID: a.ID, Success: true}, res.Items[0])
	assert.Equal(t, BatchItem{ID: missing, Error: "Product not found"}, res.Items[1])
	assert.Equal(t, BatchItem{ID: broken.ID, Error: "Something went wrong"}, res.Items[2])
	assert.Equal(t, BatchItem{ID: b.ID, Success: true}, res.Items[3])

	assert.Equal(t, models.StatusApproved, repo.Get(a.ID).Status)
	assert.Equal(t, models.StatusApproved, repo.Get(b.ID).Status)
	assert.Equal(t, models.StatusPending, repo.Get(broken.ID).Status)
}

func TestBulkUpdateStatus_Empty(t *testing.T) {
	svc, _, _ := newMutation()
	res, err := svc.BulkUpdateStatus(context.Background(), admin, nil, "rejected")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Empty(t, res.Items)
}

func TestDeleteProduct(t *testing.T) {
	ctx := context.Background()
	svc, repo, images := newMutation()

	p, err := svc.SubmitProduct(ctx, member, validInput())
	require.NoError(t, err)
	require.Equal(t, 1, images.Len())

	require.NoError(t, svc.DeleteProduct(ctx, admin, p.ID))
	assert.Nil(t, repo.Get(p.ID))
	assert.Zero(t, images.Len(), "image removed with the product")
	assert.Contains(t, repo.Topics(), events.TopicProductDeleted)

	err = svc.DeleteProduct(ctx, admin, p.ID)
	assert.ErrorIs(t, err, productdomain.ErrProductNotFound)
}
