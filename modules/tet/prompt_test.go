package tet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTetPrompt(t *testing.T) {
	opts := DefaultOptions()
	opts.CameraModel = "Canon EOS R5"
	opts.FocalLength = "50mm (Tự nhiên)"
	opts.Aperture = "f/2.8 (Vừa phải)"
	opts.Emotion = "Dịu dàng, đằm thắm"

	t.Run("embeds every option value", func(t *testing.T) {
		prompt := BuildTetPrompt(FlowerPeach, SubjectSingle, opts, AmbientVariations[0], 1)

		for _, want := range []string{
			opts.ShirtColor, opts.Style, opts.SkinColor, opts.HairColor,
			opts.CameraModel, opts.FocalLength, opts.Aperture, opts.Emotion,
			"hoa đào Nhật Tân",
			"Tông màu: Hồng, đỏ, xanh lá mạ.",
			"waist-up portrait",
			"Tập trung vào 1 người duy nhất",
			"ánh sáng tự nhiên ban ngày",
			"Ánh sáng: nắng chiều vàng nhẹ.",
		} {
			assert.Contains(t, prompt, want)
		}
		assert.NotContains(t, prompt, "AI companion")
		assert.NotContains(t, prompt, "Hãy ghép")
	})

	t.Run("apricot group with companion", func(t *testing.T) {
		o := opts
		o.Framing = FramingFullBody
		o.Companion = CompanionFemale
		o.Lighting = LightingLanternNight

		prompt := BuildTetPrompt(FlowerApricot, SubjectGroup, o, AmbientVariations[3], 1)

		assert.Contains(t, prompt, "vườn mai vàng")
		assert.Contains(t, prompt, "Tông màu: Vàng rực, đỏ, xanh tươi.")
		assert.Contains(t, prompt, "full body shot")
		assert.Contains(t, prompt, "Giữ toàn bộ các thành viên")
		assert.Contains(t, prompt, "Thêm một người nữ")
		assert.Contains(t, prompt, "ánh đèn lồng")
	})

	t.Run("several images ask for one merged scene", func(t *testing.T) {
		prompt := BuildTetPrompt(FlowerPeach, SubjectGroup, opts, AmbientVariations[1], 3)
		assert.Contains(t, prompt, "Hãy ghép tất cả những người xuất hiện trong 3 ảnh gốc")
	})
}
