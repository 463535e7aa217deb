// Package audio decodes clips for the asset manager and plays pooled clips
// through ebiten's audio context.
package audio

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"ebiten-forge/assets"
	"ebiten-forge/resource"
)

// SampleRate is the rate every clip is resampled to on decode
const SampleRate = 44100

// ErrUnsupportedFormat is returned for files that are neither mp3 nor ogg
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// DecodeFile reads an mp3 or ogg file fully into PCM at SampleRate. It
// satisfies assets.AudioDecoder.
func DecodeFile(path string) (assets.AudioClip, error) {
	file, err := os.Open(path)
	if err != nil {
		return assets.AudioClip{}, eris.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	var stream io.Reader
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		stream, err = mp3.DecodeWithSampleRate(SampleRate, file)
	case ".ogg":
		stream, err = vorbis.DecodeWithSampleRate(SampleRate, file)
	default:
		return assets.AudioClip{}, eris.Wrapf(ErrUnsupportedFormat, "%s", path)
	}
	if err != nil {
		return assets.AudioClip{}, eris.Wrapf(err, "decode %s", path)
	}

	pcm, err := io.ReadAll(stream)
	if err != nil {
		return assets.AudioClip{}, eris.Wrapf(err, "read %s", path)
	}
	return assets.AudioClip{PCM: pcm, SampleRate: SampleRate}, nil
}

// Player plays clips from an asset manager's audio pool. At most one clip
// loops as background music; one-shot effects play alongside it.
type Player struct {
	context *audio.Context
	clips   *resource.Pool[assets.AudioClip]
	log     *zap.Logger
	bgm     *audio.Player
	volume  float64
}

// NewPlayer creates a player for clips. Only one ebiten audio context may
// exist per process.
func NewPlayer(clips *resource.Pool[assets.AudioClip], log *zap.Logger) *Player {
	if log == nil {
		log = zap.NewNop()
	}
	return &Player{
		context: audio.NewContext(SampleRate),
		clips:   clips,
		log:     log,
		volume:  1,
	}
}

func (p *Player) newPlayer(h resource.Handle[assets.AudioClip]) (*audio.Player, error) {
	clip, err := p.clips.Get(h)
	if err != nil {
		return nil, eris.Wrapf(err, "clip %s", h)
	}
	player := p.context.NewPlayerFromBytes(clip.PCM)
	player.SetVolume(p.volume)
	return player, nil
}

// Play starts a one-shot clip
func (p *Player) Play(h resource.Handle[assets.AudioClip]) error {
	player, err := p.newPlayer(h)
	if err != nil {
		return err
	}
	player.Play()
	return nil
}

// PlayBGM replaces the current background music with h, looping it
func (p *Player) PlayBGM(h resource.Handle[assets.AudioClip]) error {
	clip, err := p.clips.Get(h)
	if err != nil {
		return eris.Wrapf(err, "bgm %s", h)
	}
	p.StopBGM()

	loop := audio.NewInfiniteLoop(bytes.NewReader(clip.PCM), int64(len(clip.PCM)))
	player, err := p.context.NewPlayer(loop)
	if err != nil {
		return eris.Wrap(err, "bgm player")
	}
	player.SetVolume(p.volume)
	player.Play()
	p.bgm = player
	p.log.Debug("bgm started", zap.Stringer("clip", h))
	return nil
}

// StopBGM stops the background music
func (p *Player) StopBGM() {
	if p.bgm == nil {
		return
	}
	if err := p.bgm.Close(); err != nil {
		p.log.Warn("closing bgm player", zap.Error(err))
	}
	p.bgm = nil
}

// IsBGMPlaying returns whether background music is currently playing
func (p *Player) IsBGMPlaying() bool {
	return p.bgm != nil && p.bgm.IsPlaying()
}

// SetVolume sets the volume (0.0 to 1.0) for background music and later
// one-shots
func (p *Player) SetVolume(volume float64) {
	p.volume = volume
	if p.bgm != nil {
		p.bgm.SetVolume(volume)
	}
}

// Volume returns the current volume setting
func (p *Player) Volume() float64 {
	return p.volume
}

func (p *Player) Close() {
	p.StopBGM()
}
