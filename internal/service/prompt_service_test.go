package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/haierkeys/agent-scrum-service/internal/dao"
	"github.com/haierkeys/agent-scrum-service/internal/domain"
	"github.com/haierkeys/agent-scrum-service/internal/dto"
	"github.com/haierkeys/agent-scrum-service/pkg/code"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPromptService(t *testing.T) PromptService {
	return NewPromptService(dao.NewPromptRepository(newTestRepos(t).dao), nop)
}

func validCreate() *dto.PromptCreateRequest {
	return &dto.PromptCreateRequest{Name: "Standup", Description: "Daily standup helper", Content: "Summarize yesterday.", Category: "scrum"}
}

func assertCode(t *testing.T, err error, want *code.Code) {
	t.Helper()
	require.Error(t, err)
	c, ok := err.(*code.Code)
	require.True(t, ok, "expected *code.Code, got %T", err)
	assert.Equal(t, want.Code(), c.Code())
}

func TestPromptService_CreateValidation(t *testing.T) {
	svc := newPromptService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(r *dto.PromptCreateRequest)
	}{
		{"missing name", func(r *dto.PromptCreateRequest) { r.Name = "  " }},
		{"name too long", func(r *dto.PromptCreateRequest) { r.Name = strings.Repeat("n", 101) }},
		{"missing description", func(r *dto.PromptCreateRequest) { r.Description = "" }},
		{"description too long", func(r *dto.PromptCreateRequest) { r.Description = strings.Repeat("d", 201) }},
		{"missing content", func(r *dto.PromptCreateRequest) { r.Content = "" }},
		{"category too long", func(r *dto.PromptCreateRequest) { r.Category = strings.Repeat("c", 51) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreate()
			tt.mutate(req)
			_, err := svc.Create(ctx, req, "admin@example.com")
			assertCode(t, err, code.ErrorPromptInvalid)
		})
	}

	// 长度按字符计
	req := validCreate()
	req.Name = strings.Repeat("提", 100)
	req.Category = ""
	p, err := svc.Create(ctx, req, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, p.Version)
}

func TestPromptService_EditCreatesVersionAndKeepsHistory(t *testing.T) {
	svc := newPromptService(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, validCreate(), "admin@example.com")
	require.NoError(t, err)

	v2, err := svc.CreateVersion(ctx, &dto.PromptEditRequest{
		ID: root.ID, Name: "Standup", Description: "Daily standup helper", Content: "Summarize yesterday and today.",
	}, "editor@example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
	assert.Equal(t, "editor@example.com", v2.CreatedBy)

	detail, err := svc.Get(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summarize yesterday.", detail.Prompt.Content)
	assert.False(t, detail.Prompt.IsCurrentVersion)
	require.Len(t, detail.Versions, 2)

	current, err := svc.GetCurrent(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, v2.ID, current.ID)

	list, err := svc.ListCurrent(ctx)
	require.NoError(t, err)
	want := []*dto.PromptDTO{v2}
	if d := cmp.Diff(want, list, cmpopts.IgnoreFields(dto.PromptDTO{}, "CreatedAt")); d != "" {
		t.Errorf("ListCurrent mismatch (-want +got):\n%s", d)
	}
}

func TestPromptService_ErrorsMapToCodes(t *testing.T) {
	svc := newPromptService(t)
	ctx := context.Background()

	_, err := svc.Get(ctx, 123)
	assertCode(t, err, code.ErrorPromptNotFound)

	_, err = svc.CreateVersion(ctx, &dto.PromptEditRequest{ID: 123, Name: "n", Description: "d", Content: "c"}, "x")
	assertCode(t, err, code.ErrorPromptNotFound)

	_, err = svc.Delete(ctx, &dto.PromptDeleteRequest{ID: 123})
	assertCode(t, err, code.ErrorPromptNotFound)

	root, err := svc.Create(ctx, validCreate(), "x")
	require.NoError(t, err)
	stale := root.RowVersion + 1
	_, err = svc.CreateVersion(ctx, &dto.PromptEditRequest{ID: root.ID, Name: "n", Description: "d", Content: "c", RowVersion: &stale}, "x")
	assertCode(t, err, code.ErrorPromptConflict)
}

func TestPromptService_ConcurrentEditsOneWins(t *testing.T) {
	svc := newPromptService(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, validCreate(), "x")
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rv := root.RowVersion
			_, errs[i] = svc.CreateVersion(ctx, &dto.PromptEditRequest{
				ID: root.ID, Name: "n", Description: "d", Content: "edit", RowVersion: &rv,
			}, "x")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		assertCode(t, err, code.ErrorPromptConflict)
	}
	assert.Equal(t, 1, ok)

	versions, err := svc.GetLineage(ctx, root.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 2)
}

func TestPromptService_DeletePromotes(t *testing.T) {
	svc := newPromptService(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, validCreate(), "x")
	require.NoError(t, err)
	v2, err := svc.CreateVersion(ctx, &dto.PromptEditRequest{ID: root.ID, Name: "n", Description: "d", Content: "v2"}, "x")
	require.NoError(t, err)

	res, err := svc.Delete(ctx, &dto.PromptDeleteRequest{ID: v2.ID})
	require.NoError(t, err)
	require.NotNil(t, res.Promoted)
	assert.Equal(t, root.ID, res.Promoted.ID)
	assert.True(t, res.Promoted.IsCurrentVersion)
}

func TestPromptService_Diff(t *testing.T) {
	svc := newPromptService(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, validCreate(), "x")
	require.NoError(t, err)
	v2, err := svc.CreateVersion(ctx, &dto.PromptEditRequest{
		ID: root.ID, Name: "n", Description: "d", Content: "Summarize yesterday and blockers.",
	}, "x")
	require.NoError(t, err)

	d, err := svc.Diff(ctx, root.ID, v2.ID)
	require.NoError(t, err)
	assert.Positive(t, d.Insertions)
	assert.NotEmpty(t, d.Patch)

	var rebuilt strings.Builder
	for _, seg := range d.Segments {
		if seg.Op != "delete" {
			rebuilt.WriteString(seg.Text)
		}
	}
	assert.Equal(t, "Summarize yesterday and blockers.", rebuilt.String())

	other, err := svc.Create(ctx, validCreate(), "x")
	require.NoError(t, err)
	_, err = svc.Diff(ctx, root.ID, other.ID)
	assertCode(t, err, code.ErrorPromptLineageMixed)
}

// blockingLineageRepo GetLineage 阻塞到 release 关闭，并记录共享调用所见的 ctx 错误
type blockingLineageRepo struct {
	domain.PromptRepository
	started chan struct{}
	release chan struct{}
	ctxErr  chan error
}

func (r *blockingLineageRepo) GetLineage(ctx context.Context, id int64) ([]*domain.Prompt, error) {
	r.started <- struct{}{}
	<-r.release
	r.ctxErr <- ctx.Err()
	return []*domain.Prompt{{ID: id, Version: 1, IsCurrentVersion: true}}, nil
}

// 第一个调用方取消不影响合并查询，也不影响其他调用方
func TestPromptService_CancelledReaderDoesNotFailOthers(t *testing.T) {
	repo := &blockingLineageRepo{
		started: make(chan struct{}, 2),
		release: make(chan struct{}),
		ctxErr:  make(chan error, 2),
	}
	svc := NewPromptService(repo, nop)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.GetCurrent(first, 7)
		firstErr <- err
	}()
	<-repo.started

	cancel()
	require.Error(t, <-firstErr)

	type result struct {
		p   *dto.PromptDTO
		err error
	}
	second := make(chan result, 1)
	go func() {
		p, err := svc.GetCurrent(context.Background(), 7)
		second <- result{p, err}
	}()

	close(repo.release)
	got := <-second
	require.NoError(t, got.err)
	assert.Equal(t, int64(7), got.p.ID)
	assert.NoError(t, <-repo.ctxErr)
}
