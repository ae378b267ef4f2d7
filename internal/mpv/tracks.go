package mpv

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tracksel/internal/language"
	"tracksel/internal/logging"
	"tracksel/internal/selection"
	"tracksel/internal/services"
	"tracksel/internal/track"
)

// Tracks reads and parses the player's track-list.
func (c *Client) Tracks(ctx context.Context) (track.List, error) {
	data, err := c.GetProperty(ctx, "track-list")
	if err != nil {
		return nil, err
	}
	list, err := track.ParseMPVTrackList(data)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "mpv", "track-list", "", err)
	}
	return list, nil
}

// SelectTrack makes track id the active track of kind k.
func (c *Client) SelectTrack(ctx context.Context, k track.Kind, id int) error {
	if id <= 0 {
		return services.Wrap(services.ErrValidation, "mpv", "select", fmt.Sprintf("invalid track id %d", id), nil)
	}
	return c.setKind(ctx, k, strconv.Itoa(id))
}

// DisableKind turns off every track of kind k.
func (c *Client) DisableKind(ctx context.Context, k track.Kind) error {
	return c.setKind(ctx, k, "no")
}

// AutoKind hands the choice for kind k back to mpv's own selection.
func (c *Client) AutoKind(ctx context.Context, k track.Kind) error {
	return c.setKind(ctx, k, "auto")
}

func (c *Client) setKind(ctx context.Context, k track.Kind, value string) error {
	if !k.Valid() {
		return &track.InvalidKindError{Value: string(k)}
	}
	return c.SetProperty(ctx, k.Property(), value)
}

// Apply sends the decisions that are not already in effect and returns the
// ones it sent. Auto decisions leave the player untouched.
func (c *Client) Apply(ctx context.Context, decisions []selection.Decision) ([]selection.Decision, error) {
	if len(decisions) == 0 {
		return nil, nil
	}
	current, err := c.Tracks(ctx)
	if err != nil {
		return nil, err
	}
	return c.apply(ctx, current, decisions)
}

func (c *Client) apply(ctx context.Context, current track.List, decisions []selection.Decision) ([]selection.Decision, error) {
	applied := make([]selection.Decision, 0, len(decisions))
	for _, d := range decisions {
		if InEffect(current, d) {
			continue
		}
		var err error
		switch d.Mode {
		case selection.ModeTrack:
			err = c.SelectTrack(ctx, d.Kind, d.TrackID)
		case selection.ModeOff:
			err = c.DisableKind(ctx, d.Kind)
		}
		if err != nil {
			return applied, err
		}
		c.logger.Info("track selection applied",
			logging.String(logging.FieldTrackKind, d.Kind.String()),
			logging.String("value", d.Value()),
			logging.String("reason", d.Reason),
		)
		applied = append(applied, d)
	}
	return applied, nil
}

// InEffect reports whether the player state in current already satisfies d.
func InEffect(current track.List, d selection.Decision) bool {
	selected, hasSelected := current.Selected(d.Kind)
	switch d.Mode {
	case selection.ModeTrack:
		return hasSelected && selected.ID == d.TrackID
	case selection.ModeOff:
		return !hasSelected
	default:
		return true
	}
}

// LanguageOptions returns mpv command-line options that express prefs at
// launch time.
func LanguageOptions(prefs selection.Preferences) []string {
	var args []string
	for _, k := range track.Kinds() {
		disabled := false
		for _, d := range prefs.Disabled {
			if d == k {
				disabled = true
			}
		}
		if disabled {
			args = append(args, "--"+k.Property()+"=no")
			continue
		}
		option := k.LanguageOption()
		if option == "" {
			continue
		}
		var langs []string
		if k == track.KindAudio {
			langs = prefs.AudioLanguages
		} else {
			langs = prefs.SubtitleLanguages
		}
		if expanded := languageVariants(langs); len(expanded) > 0 {
			args = append(args, "--"+option+"="+strings.Join(expanded, ","))
		}
	}
	return args
}

// languageVariants lists every spelling of each preferred language, in
// preference order, since mpv matches alang/slang against the raw track tags.
func languageVariants(langs []string) []string {
	var out []string
	seen := make(map[string]struct{}, len(langs)*3)
	for _, lang := range langs {
		for _, v := range language.Variants(lang) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// AddSubtitle sideloads an external subtitle file or URL without selecting it.
func (c *Client) AddSubtitle(ctx context.Context, source, title, lang string) error {
	if strings.TrimSpace(source) == "" {
		return services.Wrap(services.ErrValidation, "mpv", "sub-add", "empty source", nil)
	}
	_, err := c.Command(ctx, "sub-add", source, "auto", title, lang)
	return err
}
