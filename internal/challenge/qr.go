package challenge

import "github.com/deadpanpulley/alarm-nosnooze/internal/model"

// 扫码挑战：用户必须扫到创建闹钟时绑定的那张二维码，
// 期望值就是闹钟的 challenge_ref，扫错不换、不限次数。
func newQRScan(challengeRef string) *model.ChallengeInstance {
	return &model.ChallengeInstance{
		Mode:     model.ModeQRCode,
		Prompt:   "Scan your registered QR code",
		Expected: challengeRef,
	}
}
