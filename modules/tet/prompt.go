package tet

import (
	"fmt"
	"strings"
)

// AmbientVariations - 매 요청마다 하나씩 랜덤 선택되는 분위기 조명 문구
var AmbientVariations = []string{
	"nắng chiều vàng nhẹ",
	"không khí sáng sớm tinh khôi",
	"bokeh lung linh từ đèn trang trí",
	"hơi sương mờ ảo mùa xuân",
}

func flowerDescription(flower FlowerType) string {
	if flower == FlowerApricot {
		return "vườn mai vàng rực rỡ (miền Nam) khoe sắc vàng óng"
	}
	return "trồng đầy hoa đào Nhật Tân (Hà Nội) rực rỡ sắc hồng"
}

func colorsDescription(flower FlowerType) string {
	if flower == FlowerApricot {
		return "Tông màu: Vàng rực, đỏ, xanh tươi."
	}
	return "Tông màu: Hồng, đỏ, xanh lá mạ."
}

func framingDescription(framing Framing) string {
	switch framing {
	case FramingFullBody:
		return "lấy toàn thân (full body shot)"
	case FramingCloseUp:
		return "chụp cận mặt (extreme close-up)"
	default:
		return "chụp chân dung từ ngực trở lên (waist-up portrait)"
	}
}

func companionDescription(companion Companion) string {
	switch companion {
	case CompanionMale:
		return "Thêm một người nam (AI companion) đứng bên cạnh chủ thể, mặc áo dài cùng tông màu, tạo dáng thân thiện."
	case CompanionFemale:
		return "Thêm một người nữ (AI companion) đứng bên cạnh chủ thể, mặc áo dài cùng tông màu, tạo dáng duyên dáng."
	default:
		return ""
	}
}

func lightingDescription(lighting Lighting) string {
	switch lighting {
	case LightingStudio:
		return "ánh sáng studio mềm mại, chuyên nghiệp"
	case LightingGoldenHour:
		return "ánh sáng giờ vàng ấm áp"
	case LightingLanternNight:
		return "ánh đèn lồng lung linh về đêm"
	default:
		return "ánh sáng tự nhiên ban ngày"
	}
}

func subjectDescription(subject SubjectType, framingDesc string) string {
	if subject == SubjectGroup {
		return fmt.Sprintf("Giữ toàn bộ các thành viên trong ảnh gốc, %s, sắp xếp bố cục gia đình/nhóm hài hòa trong vườn hoa.", framingDesc)
	}
	return fmt.Sprintf("Tập trung vào 1 người duy nhất từ ảnh gốc, %s.", framingDesc)
}

// BuildTetPrompt - 옵션 값을 모두 포함한 베트남어 지시문 생성
// imageCount > 1 이면 모든 원본 사진의 인물을 한 장면으로 합성하도록 요청
func BuildTetPrompt(flower FlowerType, subject SubjectType, opts AdvancedOptions, ambient string, imageCount int) string {
	framingDesc := framingDescription(opts.Framing)

	var b strings.Builder
	if imageCount > 1 {
		fmt.Fprintf(&b, "Hãy ghép tất cả những người xuất hiện trong %d ảnh gốc được cung cấp vào cùng một bức ảnh nghệ thuật đón Tết Việt Nam đẳng cấp.\n", imageCount)
		b.WriteString("Mỗi người phải giữ nguyên gương mặt và nhận diện của mình, đứng chung một khung cảnh tự nhiên như một bức ảnh chụp tập thể.\n")
	} else {
		b.WriteString("Hãy biến đổi ảnh này thành một bức ảnh nghệ thuật đón Tết Việt Nam đẳng cấp.\n")
	}
	fmt.Fprintf(&b, "BỐI CẢNH: Một %s.\n", flowerDescription(flower))

	b.WriteString("GÓC CHỤP & THÔNG SỐ:\n")
	fmt.Fprintf(&b, "- Góc chụp: %s.\n", framingDesc)
	fmt.Fprintf(&b, "- Sử dụng máy ảnh %s với ống kính %s.\n", opts.CameraModel, opts.FocalLength)
	fmt.Fprintf(&b, "- Khẩu độ %s tạo hiệu ứng xóa phông (bokeh) mịt mù nghệ thuật.\n", opts.Aperture)
	fmt.Fprintf(&b, "- %s\n", subjectDescription(subject, framingDesc))
	if companion := companionDescription(opts.Companion); companion != "" {
		fmt.Fprintf(&b, "- %s\n", companion)
	}

	b.WriteString("\nYÊU CẦU NGOẠI HÌNH & TRANG PHỤC:\n")
	fmt.Fprintf(&b, "- Nhân vật mặc %s với phong cách %s.\n", opts.ShirtColor, opts.Style)
	fmt.Fprintf(&b, "- Màu da chủ thể: %s.\n", opts.SkinColor)
	fmt.Fprintf(&b, "- Màu tóc chủ thể: %s.\n", opts.HairColor)
	fmt.Fprintf(&b, "- Cảm xúc của nhân vật: %s.\n", opts.Emotion)
	b.WriteString("- Giữ nguyên đường nét cốt lõi của người trong ảnh gốc nhưng nâng cấp để trông chuyên nghiệp hơn.\n")

	b.WriteString("\nCHI TIẾT BỔ SUNG:\n")
	fmt.Fprintf(&b, "- Nguồn sáng chính: %s.\n", lightingDescription(opts.Lighting))
	fmt.Fprintf(&b, "- Ánh sáng: %s.\n", ambient)
	b.WriteString("- Không khí Tết rực rỡ, ấm áp, đậm chất truyền thống Việt Nam.\n")
	b.WriteString("- Chất lượng: 4k, cinematic, cực kỳ sắc nét ở chủ thể.\n")
	fmt.Fprintf(&b, "- %s\n", colorsDescription(flower))

	return b.String()
}
