package app

import (
	"context"
	"sync"

	"release_notifier/internal/domain/release"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"gopkg.in/telebot.v3"
)

type fakeVCS struct {
	fetchErr  error
	latest    string
	latestErr error
	existing  map[string]bool
	existsErr error
	createErr error
	pushErr   error

	existsCalls []string
	created     []string
	pushed      []string
}

func (f *fakeVCS) FetchTags(context.Context) error { return f.fetchErr }

func (f *fakeVCS) LatestTag(context.Context) (string, error) {
	return f.latest, f.latestErr
}

func (f *fakeVCS) TagExists(_ context.Context, tag string) (bool, error) {
	f.existsCalls = append(f.existsCalls, tag)
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[tag], nil
}

func (f *fakeVCS) CreateTag(_ context.Context, tag string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, tag)
	if f.existing == nil {
		f.existing = map[string]bool{}
	}
	f.existing[tag] = true
	return nil
}

func (f *fakeVCS) PushTag(_ context.Context, tag string) error {
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushed = append(f.pushed, tag)
	return nil
}

type fakeTransport struct {
	sent []*release.Message
	err  error
}

func (f *fakeTransport) Send(_ context.Context, msg *release.Message) error {
	f.sent = append(f.sent, msg)
	return f.err
}

type fakeChat struct {
	chatIDs []int64
	texts   []string
	err     error
}

func (f *fakeChat) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	f.chatIDs = append(f.chatIDs, chatID)
	f.texts = append(f.texts, text)
	return f.err
}

type fakeHistory struct {
	mu   sync.Mutex
	runs []*release.Run
	err  error
}

func (f *fakeHistory) Create(_ context.Context, run *release.Run) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, run)
	return f.err
}

func (f *fakeHistory) ListRecent(context.Context, int) ([]*release.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.runs, nil
}

func nullLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}
