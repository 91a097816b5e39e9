package tet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tet-photo-server/modules/common/utils"
)

func TestTransform(t *testing.T) {
	ctx := context.Background()
	photo := utils.EncodedImage{MIMEType: "image/jpeg", Data: []byte{0xff, 0xd8, 0x01}}

	t.Run("returns first inline image as data URI", func(t *testing.T) {
		gen := &mockGenerator{response: imageResponse("image/png", []byte("png-bytes"))}
		svc := newTestService(gen)

		got, err := svc.Transform(ctx, []utils.EncodedImage{photo}, FlowerPeach, SubjectSingle, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, utils.EncodeDataURI("image/png", []byte("png-bytes")), got)

		require.Len(t, gen.calls, 1)
		call := gen.calls[0]
		assert.Equal(t, "test-model", call.Model)
		assert.Equal(t, "3:4", call.Config.ImageConfig.AspectRatio)

		require.Len(t, call.Contents, 1)
		parts := call.Contents[0].Parts
		require.Len(t, parts, 2)
		assert.Equal(t, photo.Data, parts[0].InlineData.Data)
		assert.Equal(t, "image/jpeg", parts[0].InlineData.MIMEType)
		assert.Contains(t, parts[1].Text, AmbientVariations[2])
	})

	t.Run("missing response MIME defaults to png", func(t *testing.T) {
		gen := &mockGenerator{response: imageResponse("", []byte("raw"))}
		got, err := newTestService(gen).Transform(ctx, []utils.EncodedImage{photo}, "", "", DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, "data:image/png;base64,cmF3", got)
	})

	t.Run("full-body requests 9:16", func(t *testing.T) {
		gen := &mockGenerator{response: imageResponse("image/png", []byte("x"))}
		opts := DefaultOptions()
		opts.Framing = FramingFullBody

		_, err := newTestService(gen).Transform(ctx, []utils.EncodedImage{photo}, FlowerApricot, SubjectGroup, opts)
		require.NoError(t, err)
		assert.Equal(t, "9:16", gen.calls[0].Config.ImageConfig.AspectRatio)
	})

	t.Run("all images are attached before the prompt", func(t *testing.T) {
		gen := &mockGenerator{response: imageResponse("image/png", []byte("x"))}
		second := utils.EncodedImage{MIMEType: "image/png", Data: []byte("second")}

		_, err := newTestService(gen).Transform(ctx, []utils.EncodedImage{photo, second}, FlowerPeach, SubjectGroup, DefaultOptions())
		require.NoError(t, err)

		parts := gen.calls[0].Contents[0].Parts
		require.Len(t, parts, 3)
		assert.Equal(t, photo.Data, parts[0].InlineData.Data)
		assert.Equal(t, second.Data, parts[1].InlineData.Data)
		assert.Contains(t, parts[2].Text, "2 ảnh gốc")
	})

	t.Run("no inline image yields empty result", func(t *testing.T) {
		gen := &mockGenerator{response: textOnlyResponse()}
		got, err := newTestService(gen).Transform(ctx, []utils.EncodedImage{photo}, FlowerPeach, SubjectSingle, DefaultOptions())
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("gemini error is returned unmodified", func(t *testing.T) {
		apiErr := errors.New("googleapi: Error 429: RESOURCE_EXHAUSTED")
		gen := &mockGenerator{err: apiErr}

		_, err := newTestService(gen).Transform(ctx, []utils.EncodedImage{photo}, FlowerPeach, SubjectSingle, DefaultOptions())
		assert.Same(t, apiErr, err)
		assert.Len(t, gen.calls, 1, "no retry")
	})

	t.Run("no images", func(t *testing.T) {
		gen := &mockGenerator{}
		_, err := newTestService(gen).Transform(ctx, nil, FlowerPeach, SubjectSingle, DefaultOptions())
		assert.ErrorIs(t, err, ErrNoImages)
		assert.Empty(t, gen.calls)
	})
}

func TestTransformDataURIs(t *testing.T) {
	gen := &mockGenerator{response: imageResponse("image/png", []byte("x"))}
	svc := newTestService(gen)

	_, err := svc.TransformDataURIs(context.Background(), []string{"not-a-data-uri"}, FlowerPeach, SubjectSingle, DefaultOptions())
	assert.ErrorIs(t, err, utils.ErrInvalidDataURI)
	assert.Empty(t, gen.calls)

	_, err = svc.TransformDataURIs(context.Background(), []string{"data:image/jpeg;base64,aGVsbG8="}, FlowerPeach, SubjectSingle, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, gen.calls, 1)
	assert.Equal(t, []byte("hello"), gen.calls[0].Contents[0].Parts[0].InlineData.Data)
}
