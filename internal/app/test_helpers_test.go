package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/archivist/internal/core/archive"
	"github.com/example/archivist/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

// Ensure the mocks implement the interfaces.
var (
	_ secondary.ArchiveRepository    = (*mockArchiveRepo)(nil)
	_ secondary.ChannelRepository    = (*mockChannelRepo)(nil)
	_ secondary.MessageRepository    = (*mockMessageRepo)(nil)
	_ secondary.TopicRepository      = (*mockTopicRepo)(nil)
	_ secondary.MembershipRepository = (*mockMembershipRepo)(nil)
	_ secondary.NoticeRepository     = (*mockNoticeRepo)(nil)
	_ secondary.JobQueue             = (*mockQueue)(nil)
	_ secondary.ExecutionLock        = (*mockLock)(nil)
	_ secondary.UnitOfWork           = (*mockUnitOfWork)(nil)
)

// mockArchiveRepo implements secondary.ArchiveRepository for testing.
type mockArchiveRepo struct {
	records   map[string]*secondary.ArchiveRecord
	nextID    int
	createErr error
}

func newMockArchiveRepo() *mockArchiveRepo {
	return &mockArchiveRepo{records: make(map[string]*secondary.ArchiveRecord)}
}

func (m *mockArchiveRepo) Create(ctx context.Context, record *secondary.ArchiveRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	clone := *record
	m.records[record.ID] = &clone
	return nil
}

func (m *mockArchiveRepo) GetByID(ctx context.Context, id string) (*secondary.ArchiveRecord, error) {
	if record, ok := m.records[id]; ok {
		clone := *record
		return &clone, nil
	}
	return nil, fmt.Errorf("archive %s not found", id)
}

func (m *mockArchiveRepo) FindCurrentByChannel(ctx context.Context, channelID string) (*secondary.ArchiveRecord, error) {
	for _, record := range m.records {
		if record.ChannelID == channelID {
			clone := *record
			return &clone, nil
		}
	}
	return nil, nil
}

func (m *mockArchiveRepo) List(ctx context.Context, filters secondary.ArchiveFilters) ([]*secondary.ArchiveRecord, error) {
	var result []*secondary.ArchiveRecord
	for _, record := range m.records {
		clone := *record
		result = append(result, &clone)
	}
	return result, nil
}

func (m *mockArchiveRepo) ListStale(ctx context.Context, states []string, updatedBefore time.Time) ([]*secondary.ArchiveRecord, error) {
	var result []*secondary.ArchiveRecord
	for _, record := range m.records {
		for _, s := range states {
			if record.State == s {
				clone := *record
				result = append(result, &clone)
				break
			}
		}
	}
	return result, nil
}

func (m *mockArchiveRepo) SetState(ctx context.Context, id, state string) error {
	record, ok := m.records[id]
	if !ok {
		return fmt.Errorf("archive %s not found", id)
	}
	record.State = state
	return nil
}

func (m *mockArchiveRepo) SetDestination(ctx context.Context, id, topicID string, created bool) error {
	record, ok := m.records[id]
	if !ok {
		return fmt.Errorf("archive %s not found", id)
	}
	record.DestinationTopicID = topicID
	record.TopicCreated = created
	return nil
}

func (m *mockArchiveRepo) MarkFailed(ctx context.Context, id, reason string) error {
	record, ok := m.records[id]
	if !ok {
		return fmt.Errorf("archive %s not found", id)
	}
	record.State = archive.StateFailed
	record.LastError = reason
	return nil
}

func (m *mockArchiveRepo) MarkComplete(ctx context.Context, id string) error {
	record, ok := m.records[id]
	if !ok {
		return fmt.Errorf("archive %s not found", id)
	}
	record.State = archive.StateComplete
	record.LastError = ""
	return nil
}

func (m *mockArchiveRepo) GetNextID(ctx context.Context) (string, error) {
	m.nextID++
	return fmt.Sprintf("ARC-%03d", m.nextID), nil
}

// mockChannelRepo implements secondary.ChannelRepository for testing.
type mockChannelRepo struct {
	channels map[string]*secondary.ChannelRecord
}

func newMockChannelRepo() *mockChannelRepo {
	return &mockChannelRepo{channels: make(map[string]*secondary.ChannelRecord)}
}

func (m *mockChannelRepo) GetByID(ctx context.Context, id string) (*secondary.ChannelRecord, error) {
	if channel, ok := m.channels[id]; ok {
		return channel, nil
	}
	return nil, fmt.Errorf("channel %s not found", id)
}

func (m *mockChannelRepo) SetStatus(ctx context.Context, id, status string) error {
	channel, ok := m.channels[id]
	if !ok {
		return fmt.Errorf("channel %s not found", id)
	}
	channel.Status = status
	return nil
}

// mockRef is one auxiliary record (reaction, attachment, revision, or
// webhook event) tracked by ownership.
type mockRef struct {
	ID        string
	MessageID string
	PostID    string
}

// mockMessageRepo implements secondary.MessageRepository for testing.
// Messages keep insertion order, which stands in for (created_at, id).
type mockMessageRepo struct {
	messages  []*secondary.MessageRecord
	reactions map[string][]secondary.ReactionCount
	listErr   error
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{reactions: make(map[string][]secondary.ReactionCount)}
}

func (m *mockMessageRepo) Create(ctx context.Context, message *secondary.MessageRecord) error {
	if message.Kind == secondary.MessageKindPlaceholder {
		for _, existing := range m.messages {
			if existing.ID == message.ID {
				return nil
			}
		}
	}
	clone := *message
	if clone.Kind == "" {
		clone.Kind = secondary.MessageKindUser
	}
	m.messages = append(m.messages, &clone)
	return nil
}

func (m *mockMessageRepo) active(channelID string) []*secondary.MessageRecord {
	var result []*secondary.MessageRecord
	for _, msg := range m.messages {
		if msg.ChannelID == channelID && !msg.Deleted && msg.Kind == secondary.MessageKindUser {
			result = append(result, msg)
		}
	}
	return result
}

func (m *mockMessageRepo) CountActive(ctx context.Context, channelID string) (int, error) {
	return len(m.active(channelID)), nil
}

func (m *mockMessageRepo) ListActive(ctx context.Context, channelID string, offset, limit int) ([]*secondary.MessageRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	msgs := m.active(channelID)
	if offset >= len(msgs) {
		return nil, nil
	}
	msgs = msgs[offset:]
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[:limit]
	}
	return msgs, nil
}

func (m *mockMessageRepo) DeleteActive(ctx context.Context, channelID string, limit int) error {
	remaining := m.messages[:0]
	deleted := 0
	for _, msg := range m.messages {
		if deleted < limit && msg.ChannelID == channelID && !msg.Deleted && msg.Kind == secondary.MessageKindUser {
			deleted++
			continue
		}
		remaining = append(remaining, msg)
	}
	m.messages = remaining
	return nil
}

func (m *mockMessageRepo) ReactionCounts(ctx context.Context, messageID string) ([]secondary.ReactionCount, error) {
	return m.reactions[messageID], nil
}

// mockTopicRepo implements secondary.TopicRepository for testing.
type mockTopicRepo struct {
	topics    map[string]*secondary.TopicRecord
	posts     []*secondary.PostRecord
	createErr error
}

func newMockTopicRepo() *mockTopicRepo {
	return &mockTopicRepo{topics: make(map[string]*secondary.TopicRecord)}
}

func (m *mockTopicRepo) Create(ctx context.Context, topic *secondary.TopicRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if err := archive.ValidateTitle(topic.Title); err != nil {
		return err
	}
	clone := *topic
	if clone.Status == "" {
		clone.Status = archive.TopicOpen
	}
	m.topics[topic.ID] = &clone
	return nil
}

func (m *mockTopicRepo) GetByID(ctx context.Context, id string) (*secondary.TopicRecord, error) {
	if topic, ok := m.topics[id]; ok {
		return topic, nil
	}
	return nil, fmt.Errorf("topic %s not found", id)
}

func (m *mockTopicRepo) SetStatus(ctx context.Context, id, status string) error {
	topic, ok := m.topics[id]
	if !ok {
		return fmt.Errorf("topic %s not found", id)
	}
	topic.Status = status
	return nil
}

func (m *mockTopicRepo) CountPosts(ctx context.Context, topicID string) (int, error) {
	count := 0
	for _, post := range m.posts {
		if post.TopicID == topicID {
			count++
		}
	}
	return count, nil
}

func (m *mockTopicRepo) GetPostByBatchKey(ctx context.Context, batchKey string) (*secondary.PostRecord, error) {
	for _, post := range m.posts {
		if post.BatchKey == batchKey {
			return post, nil
		}
	}
	return nil, nil
}

func (m *mockTopicRepo) ListPosts(ctx context.Context, topicID string) ([]*secondary.PostRecord, error) {
	var result []*secondary.PostRecord
	for _, post := range m.posts {
		if post.TopicID == topicID {
			result = append(result, post)
		}
	}
	return result, nil
}

// mockMembershipRepo implements secondary.MembershipRepository for testing.
type mockMembershipRepo struct {
	memberships []*secondary.MembershipRecord
}

func newMockMembershipRepo() *mockMembershipRepo {
	return &mockMembershipRepo{}
}

func (m *mockMembershipRepo) ListFollowers(ctx context.Context, channelID string) ([]*secondary.MembershipRecord, error) {
	var result []*secondary.MembershipRecord
	for _, ms := range m.memberships {
		if ms.ChannelID == channelID && ms.Following {
			result = append(result, ms)
		}
	}
	return result, nil
}

func (m *mockMembershipRepo) ResetFollowing(ctx context.Context, channelID string) error {
	for _, ms := range m.memberships {
		if ms.ChannelID == channelID {
			ms.Following = false
			ms.LastReadMessageID = ""
		}
	}
	return nil
}

// mockNoticeRepo implements secondary.NoticeRepository for testing.
type mockNoticeRepo struct {
	notices   []*secondary.NoticeRecord
	createErr error
}

func newMockNoticeRepo() *mockNoticeRepo {
	return &mockNoticeRepo{}
}

func (m *mockNoticeRepo) Create(ctx context.Context, notice *secondary.NoticeRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	clone := *notice
	m.notices = append(m.notices, &clone)
	return nil
}

func (m *mockNoticeRepo) ListForRecipient(ctx context.Context, recipient string, unreadOnly bool) ([]*secondary.NoticeRecord, error) {
	var result []*secondary.NoticeRecord
	for _, n := range m.notices {
		if n.Recipient != recipient {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		result = append(result, n)
	}
	return result, nil
}

func (m *mockNoticeRepo) MarkRead(ctx context.Context, id string) error {
	for _, n := range m.notices {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return fmt.Errorf("notice %s not found", id)
}

// mockQueue implements secondary.JobQueue for testing.
type mockQueue struct {
	jobs       []secondary.Job
	enqueueErr error
}

func newMockQueue() *mockQueue {
	return &mockQueue{}
}

func (m *mockQueue) Enqueue(ctx context.Context, job secondary.Job) error {
	if m.enqueueErr != nil {
		return m.enqueueErr
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func (m *mockQueue) Pop(ctx context.Context) (*secondary.Job, error) {
	if len(m.jobs) == 0 {
		return nil, errors.New("queue empty")
	}
	job := m.jobs[0]
	m.jobs = m.jobs[1:]
	return &job, nil
}

// mockLock implements secondary.ExecutionLock for testing.
type mockLock struct {
	held       map[string]bool
	denyAll    bool
	acquireErr error
}

func newMockLock() *mockLock {
	return &mockLock{held: make(map[string]bool)}
}

func (m *mockLock) Acquire(ctx context.Context, archiveID string) (string, bool, error) {
	if m.acquireErr != nil {
		return "", false, m.acquireErr
	}
	if m.denyAll || m.held[archiveID] {
		return "", false, nil
	}
	m.held[archiveID] = true
	return "token-" + archiveID, true, nil
}

func (m *mockLock) Release(ctx context.Context, archiveID, token string) error {
	delete(m.held, archiveID)
	return nil
}

// mockUnitOfWork implements secondary.UnitOfWork for testing. Writes buffer
// in a mockBatchTx and apply only when fn succeeds, mirroring the
// transaction boundary of the real adapter. postFailuresLeft injects
// failures into post creation: each failing call decrements it, so a test
// can fail a run and then let the retry through.
type mockUnitOfWork struct {
	archives *mockArchiveRepo
	topics   *mockTopicRepo
	refs     *mockRefStore

	postErr          error
	postFailuresLeft int
	failOnPostCall   int // 1-based CreatePost call number to fail, 0 = off
	postCalls        int
}

// mockRefStore tracks auxiliary record ownership across all four kinds.
type mockRefStore struct {
	reactions     []*mockRef
	attachments   []*mockRef
	revisions     []*mockRef
	webhookEvents []*mockRef
}

func (s *mockRefStore) all() []*mockRef {
	var result []*mockRef
	result = append(result, s.reactions...)
	result = append(result, s.attachments...)
	result = append(result, s.revisions...)
	result = append(result, s.webhookEvents...)
	return result
}

func (m *mockUnitOfWork) WithinTx(ctx context.Context, fn func(tx secondary.BatchTx) error) error {
	tx := &mockBatchTx{uow: m}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

// mockBatchTx buffers one batch's writes until commit.
type mockBatchTx struct {
	uow *mockUnitOfWork

	post          *secondary.PostRecord
	repoints      []repointOp
	cursorArchive string
	cursorDelta   int
}

type repointOp struct {
	refs       *[]*mockRef
	messageIDs []string
	postID     string
}

func (t *mockBatchTx) CreatePost(ctx context.Context, post *secondary.PostRecord) error {
	t.uow.postCalls++
	if t.uow.postFailuresLeft > 0 {
		t.uow.postFailuresLeft--
		return t.uow.postErr
	}
	if t.uow.failOnPostCall > 0 && t.uow.postCalls == t.uow.failOnPostCall {
		return t.uow.postErr
	}
	for _, existing := range t.uow.topics.posts {
		if post.BatchKey != "" && existing.BatchKey == post.BatchKey {
			return fmt.Errorf("duplicate batch key %s", post.BatchKey)
		}
	}
	clone := *post
	t.post = &clone
	return nil
}

func (t *mockBatchTx) RepointReactions(ctx context.Context, messageIDs []string, postID string) error {
	t.repoints = append(t.repoints, repointOp{&t.uow.refs.reactions, messageIDs, postID})
	return nil
}

func (t *mockBatchTx) RepointAttachments(ctx context.Context, messageIDs []string, postID string) error {
	t.repoints = append(t.repoints, repointOp{&t.uow.refs.attachments, messageIDs, postID})
	return nil
}

func (t *mockBatchTx) RepointRevisions(ctx context.Context, messageIDs []string, postID string) error {
	t.repoints = append(t.repoints, repointOp{&t.uow.refs.revisions, messageIDs, postID})
	return nil
}

func (t *mockBatchTx) RepointWebhookEvents(ctx context.Context, messageIDs []string, postID string) error {
	t.repoints = append(t.repoints, repointOp{&t.uow.refs.webhookEvents, messageIDs, postID})
	return nil
}

func (t *mockBatchTx) AdvanceCursor(ctx context.Context, archiveID string, delta int) error {
	t.cursorArchive = archiveID
	t.cursorDelta = delta
	return nil
}

func (t *mockBatchTx) commit() error {
	if t.cursorArchive != "" {
		record, ok := t.uow.archives.records[t.cursorArchive]
		if !ok {
			return fmt.Errorf("archive %s not found", t.cursorArchive)
		}
		if record.ArchivedMessages+t.cursorDelta > record.TotalMessages {
			return fmt.Errorf("cursor advance of %d rejected for archive %s", t.cursorDelta, t.cursorArchive)
		}
		record.ArchivedMessages += t.cursorDelta
	}

	if t.post != nil {
		position := 0
		for _, existing := range t.uow.topics.posts {
			if existing.TopicID == t.post.TopicID && existing.Position > position {
				position = existing.Position
			}
		}
		t.post.Position = position + 1
		t.uow.topics.posts = append(t.uow.topics.posts, t.post)
	}

	for _, op := range t.repoints {
		for _, ref := range *op.refs {
			for _, id := range op.messageIDs {
				if ref.MessageID == id {
					ref.PostID = op.postID
					ref.MessageID = ""
					break
				}
			}
		}
	}

	return nil
}

// ============================================================================
// Fixture
// ============================================================================

// fixture wires the full service graph over mocks.
type fixture struct {
	archives    *mockArchiveRepo
	channels    *mockChannelRepo
	messages    *mockMessageRepo
	topics      *mockTopicRepo
	memberships *mockMembershipRepo
	notices     *mockNoticeRepo
	queue       *mockQueue
	lock        *mockLock
	uow         *mockUnitOfWork
	refs        *mockRefStore

	registrar *Registrar
	pipeline  *Pipeline
	service   *ArchiveServiceImpl
}

// newTestFixture builds the service graph with the given batch size and
// topic status policy.
func newTestFixture(batchSize int, topicPolicy string) *fixture {
	f := &fixture{
		archives:    newMockArchiveRepo(),
		channels:    newMockChannelRepo(),
		messages:    newMockMessageRepo(),
		topics:      newMockTopicRepo(),
		memberships: newMockMembershipRepo(),
		notices:     newMockNoticeRepo(),
		queue:       newMockQueue(),
		lock:        newMockLock(),
		refs:        &mockRefStore{},
	}
	f.uow = &mockUnitOfWork{archives: f.archives, topics: f.topics, refs: f.refs}

	logger := zap.NewNop()
	dispatcher := NewNotificationDispatcher(f.notices, "system", logger)
	finalizer := NewChannelFinalizer(f.channels, f.messages, f.memberships, f.topics,
		FinalizerConfig{TopicStatusPolicy: topicPolicy, SystemActor: "system"}, logger)

	f.registrar = NewRegistrar(f.archives, f.channels, f.messages, f.topics, f.queue, logger)
	f.pipeline = NewPipeline(f.archives, f.messages, f.topics, f.uow, f.lock,
		NewReferenceMigrator(), finalizer, dispatcher,
		PipelineConfig{BatchSize: batchSize, SystemActor: "system"}, logger)
	f.service = NewArchiveService(f.registrar, f.pipeline, f.archives, f.notices)

	return f
}

func (f *fixture) seedChannel(id string) {
	f.channels.channels[id] = &secondary.ChannelRecord{ID: id, Name: "general", Status: archive.ChannelOpen}
}

func (f *fixture) seedMessages(channelID string, count int) []string {
	ids := make([]string, 0, count)
	base := len(f.messages.messages)
	for i := 0; i < count; i++ {
		id := fmt.Sprintf("%s-MSG-%03d", channelID, base+i+1)
		f.messages.messages = append(f.messages.messages, &secondary.MessageRecord{
			ID:        id,
			ChannelID: channelID,
			Author:    "alice",
			Body:      fmt.Sprintf("message %d", base+i+1),
			Kind:      secondary.MessageKindUser,
			CreatedAt: fmt.Sprintf("2024-03-01T09:00:%02dZ", base+i),
		})
		ids = append(ids, id)
	}
	return ids
}

func (f *fixture) seedTopicWithPosts(id string, postCount int) {
	f.topics.topics[id] = &secondary.TopicRecord{
		ID: id, Title: "Existing topic", Author: "bob", Status: archive.TopicOpen,
	}
	for i := 0; i < postCount; i++ {
		f.topics.posts = append(f.topics.posts, &secondary.PostRecord{
			ID: fmt.Sprintf("%s-POST-%d", id, i+1), TopicID: id, Author: "bob",
			Body: "organic post", Position: i + 1,
		})
	}
}

func (f *fixture) follow(channelID string, users ...string) {
	for _, user := range users {
		f.memberships.memberships = append(f.memberships.memberships, &secondary.MembershipRecord{
			ChannelID: channelID, UserID: user, Following: true, LastReadMessageID: "MSG-000",
		})
	}
}
