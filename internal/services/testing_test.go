package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ticketbird/ticketbird/internal/platform"
	"github.com/ticketbird/ticketbird/internal/repo"
)

func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("services_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	db.Exec("PRAGMA foreign_keys=ON;")

	if err := repo.Migrate(db, zerolog.Nop(), repo.DefaultMigrations); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeResponder records interaction responses.
type fakeResponder struct {
	sent      []string
	ephemeral []bool
	edits     []string
	followups []string
}

func (r *fakeResponder) Send(_ context.Context, content string, ephemeral bool) error {
	r.sent = append(r.sent, content)
	r.ephemeral = append(r.ephemeral, ephemeral)
	return nil
}

func (r *fakeResponder) Edit(_ context.Context, content string) error {
	r.edits = append(r.edits, content)
	return nil
}

func (r *fakeResponder) Followup(_ context.Context, content string, ephemeral bool) error {
	r.followups = append(r.followups, content)
	return nil
}

func (r *fakeResponder) lastSent(t *testing.T) string {
	t.Helper()
	if len(r.sent) == 0 {
		t.Fatal("no response sent")
	}
	return r.sent[len(r.sent)-1]
}

func (r *fakeResponder) lastEdit(t *testing.T) string {
	t.Helper()
	if len(r.edits) == 0 {
		t.Fatal("no response edit")
	}
	return r.edits[len(r.edits)-1]
}

// fakeState is a scriptable platform.GuildState.
type fakeState struct {
	botID          int64
	memberPresence bool
	roles          []platform.Role
	locale         string
	perms          map[int64]platform.Permissions
	overwrites     map[int64][]platform.Overwrite
	slowmode       map[int64]time.Duration
	threads        map[int64]*platform.Thread
	activeThreads  map[int64][]platform.Thread
	channels       map[int64]bool
	guilds         []int64
}

func newFakeState() *fakeState {
	return &fakeState{
		botID:         999,
		locale:        "en-US",
		perms:         make(map[int64]platform.Permissions),
		overwrites:    make(map[int64][]platform.Overwrite),
		slowmode:      make(map[int64]time.Duration),
		threads:       make(map[int64]*platform.Thread),
		activeThreads: make(map[int64][]platform.Thread),
		channels:      make(map[int64]bool),
	}
}

func (s *fakeState) BotID() int64         { return s.botID }
func (s *fakeState) MemberPresence() bool { return s.memberPresence }

func (s *fakeState) Roles(context.Context, int64) ([]platform.Role, error) {
	return s.roles, nil
}

func (s *fakeState) PreferredLocale(context.Context, int64) (string, error) {
	return s.locale, nil
}

func (s *fakeState) Permissions(_ context.Context, channelID int64) (platform.Permissions, error) {
	return s.perms[channelID], nil
}

func (s *fakeState) Overwrites(_ context.Context, channelID int64) ([]platform.Overwrite, error) {
	return s.overwrites[channelID], nil
}

func (s *fakeState) SlowmodeDelay(_ context.Context, channelID int64) (time.Duration, error) {
	return s.slowmode[channelID], nil
}

func (s *fakeState) ActiveThreads(_ context.Context, channelID int64) ([]platform.Thread, error) {
	return s.activeThreads[channelID], nil
}

func (s *fakeState) Thread(_ context.Context, threadID int64) (*platform.Thread, error) {
	return s.threads[threadID], nil
}

func (s *fakeState) HasChannel(_ context.Context, channelID int64) (bool, error) {
	return s.channels[channelID], nil
}

func (s *fakeState) GuildIDs(context.Context) ([]int64, error) {
	return s.guilds, nil
}

type threadMessage struct {
	ThreadID         int64
	Content          string
	SuppressMentions bool
}

type threadEdit struct {
	ThreadID int64
	Archived bool
	Locked   bool
}

type createdThread struct {
	ChannelID int64
	Name      string
	Reason    string
}

// fakeThreads is a scriptable platform.ThreadManager.
type fakeThreads struct {
	nextID    int64
	createErr error
	sendErr   error

	created  []createdThread
	messages []threadMessage
	edits    []threadEdit
}

func (f *fakeThreads) CreatePrivateThread(_ context.Context, channelID int64, name, reason string) (*platform.Thread, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	f.created = append(f.created, createdThread{ChannelID: channelID, Name: name, Reason: reason})
	id := 5000 + f.nextID
	return &platform.Thread{
		ID:       id,
		ParentID: channelID,
		Name:     name,
		JumpURL:  fmt.Sprintf("https://example.test/t/%d", id),
	}, nil
}

func (f *fakeThreads) SendThreadMessage(_ context.Context, threadID int64, content string, suppressMentions bool) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.messages = append(f.messages, threadMessage{threadID, content, suppressMentions})
	return nil
}

func (f *fakeThreads) EditThread(_ context.Context, threadID int64, archived, locked bool) error {
	f.edits = append(f.edits, threadEdit{threadID, archived, locked})
	return nil
}

type sentMessage struct {
	ChannelID int64
	MessageID int64
	Params    platform.MessageParams
}

// fakeMessenger is a scriptable platform.Messenger.
type fakeMessenger struct {
	nextID  int64
	sent    []sentMessage
	edited  []sentMessage
	uploads []platform.Attachment
}

func (f *fakeMessenger) SendMessage(_ context.Context, channelID int64, params platform.MessageParams) (*platform.Message, error) {
	f.nextID++
	id := 8000 + f.nextID
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, MessageID: id, Params: params})
	return &platform.Message{
		ID:        id,
		ChannelID: channelID,
		JumpURL:   fmt.Sprintf("https://example.test/m/%d", id),
	}, nil
}

func (f *fakeMessenger) EditMessage(_ context.Context, channelID, messageID int64, params platform.MessageParams) (*platform.Message, error) {
	f.edited = append(f.edited, sentMessage{ChannelID: channelID, MessageID: messageID, Params: params})
	return &platform.Message{ID: messageID, ChannelID: channelID}, nil
}

func (f *fakeMessenger) UploadAttachment(_ context.Context, a platform.Attachment) (platform.File, error) {
	f.uploads = append(f.uploads, a)
	return platform.File{
		Filename:      a.Filename,
		AttachmentURL: "attachment://" + a.Filename,
	}, nil
}
