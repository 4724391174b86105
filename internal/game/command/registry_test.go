package command

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tale/internal/game/soul"
	"github.com/cory-johannsen/tale/internal/game/world"
)

func nopHandler(*Ctx, *world.Player, *soul.ParseResult) (Result, error) { return Result{}, nil }

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r)
	assert.Greater(t, len(r.Commands()), 40)
}

func TestResolve_CanonicalName(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("take")
	require.True(t, ok)
	assert.Equal(t, "take", cmd.Name)
	assert.Equal(t, CategoryItems, cmd.Category)
}

func TestResolve_Alias(t *testing.T) {
	r := DefaultRegistry()

	for alias, name := range map[string]string{
		"get":          "take",
		"inspect":      "examine",
		"!teleport_to": "!teleport",
		"date":         "time",
	} {
		cmd, ok := r.Resolve(alias)
		require.True(t, ok, alias)
		assert.Equal(t, name, cmd.Name, alias)
	}
}

func TestResolve_NotFound(t *testing.T) {
	r := DefaultRegistry()

	_, ok := r.Resolve("teleport")
	assert.False(t, ok)
	_, ok = r.Resolve("smile")
	assert.False(t, ok, "emotes are not commands")
}

func TestWizardCommands_AreMarked(t *testing.T) {
	for _, cmd := range WizardCommands() {
		assert.True(t, cmd.Wizard, cmd.Name)
		assert.True(t, cmd.NoNotifyAction, cmd.Name)
		assert.True(t, strings.HasPrefix(cmd.Name, "!"), cmd.Name)
		assert.Equal(t, CategoryWizard, cmd.Category, cmd.Name)
	}
}

func TestNormalCommands_NeverStartWithBang(t *testing.T) {
	for _, cmd := range NormalCommands() {
		assert.False(t, cmd.Wizard, cmd.Name)
		for _, n := range cmd.Names() {
			assert.False(t, strings.HasPrefix(n, "!"), n)
		}
	}
}

func TestNewRegistry_Errors(t *testing.T) {
	cases := map[string][]Command{
		"duplicate name":  {{Name: "foo", Handler: nopHandler}, {Name: "foo", Handler: nopHandler}},
		"duplicate alias": {{Name: "foo", Aliases: []string{"f"}, Handler: nopHandler}, {Name: "bar", Aliases: []string{"f"}, Handler: nopHandler}},
		"alias vs name":   {{Name: "foo", Handler: nopHandler}, {Name: "bar", Aliases: []string{"foo"}, Handler: nopHandler}},
		"no handler":      {{Name: "foo"}},
		"bang not wizard": {{Name: "!foo", Handler: nopHandler}},
		"wizard no bang":  {{Name: "foo", Wizard: true, Handler: nopHandler}},
		"emote clash":     {{Name: "smile", Handler: nopHandler}},
	}
	for name, cmds := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewRegistry(cmds)
			assert.Error(t, err)
		})
	}
}

func TestNewRegistry_EmoteOverride(t *testing.T) {
	r, err := NewRegistry([]Command{{Name: "smile", OverridesSoul: true, Handler: nopHandler}})
	require.NoError(t, err)
	_, ok := r.Resolve("smile")
	assert.True(t, ok)
}

func TestVerbs_HidesWizardCommands(t *testing.T) {
	r := DefaultRegistry()
	for _, v := range r.Verbs(false) {
		assert.False(t, strings.HasPrefix(v, "!"), v)
	}
	assert.Contains(t, r.Verbs(true), "!server")
}

func TestCommandsByCategory_CoversEveryCommand(t *testing.T) {
	r := DefaultRegistry()
	total := 0
	for cat, cmds := range r.CommandsByCategory() {
		assert.NotEmpty(t, cat)
		total += len(cmds)
	}
	assert.Equal(t, len(r.Commands()), total)
}

func TestProperty_EveryVerbResolves(t *testing.T) {
	r := DefaultRegistry()
	verbs := r.Verbs(true)
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.SampledFrom(verbs).Draw(t, "verb")
		cmd, ok := r.Resolve(v)
		if !ok {
			t.Fatalf("verb %q does not resolve", v)
		}
		if strings.HasPrefix(v, "!") != cmd.Wizard {
			t.Fatalf("verb %q resolves to %q with wizard=%v", v, cmd.Name, cmd.Wizard)
		}
	})
}
