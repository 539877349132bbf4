package challenge

import (
	"strconv"
	"strings"
	"testing"

	"github.com/deadpanpulley/alarm-nosnooze/internal/model"
)

func TestGenerateQuiz(t *testing.T) {
	inst, err := Generate(model.Alarm{Mode: model.ModeQuiz})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if inst.Mode != model.ModeQuiz {
		t.Fatalf("mode = %s", inst.Mode)
	}
	if inst.Prompt == "" {
		t.Fatal("quiz prompt empty")
	}
	if _, err := strconv.Atoi(inst.Expected); err != nil {
		t.Fatalf("quiz expected %q is not a number", inst.Expected)
	}

	if !Verify(inst, inst.Expected) {
		t.Fatal("correct answer rejected")
	}
	if Verify(inst, inst.Expected+"0") {
		t.Fatal("wrong answer accepted")
	}
}

func TestGenerateCaptcha(t *testing.T) {
	inst, err := Generate(model.Alarm{Mode: model.ModeCaptcha})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	code, ok := inst.Payload["code"].(string)
	if !ok || code == "" {
		t.Fatalf("captcha payload missing code: %+v", inst.Payload)
	}
	if code != inst.Expected {
		t.Fatalf("payload code %q != expected %q", code, inst.Expected)
	}
	for _, r := range code {
		if !strings.ContainsRune(captchaAlphabet, r) {
			t.Fatalf("code contains char outside alphabet: %q", r)
		}
	}

	// 大小写敏感
	if Verify(inst, strings.ToLower(inst.Expected)) && inst.Expected != strings.ToLower(inst.Expected) {
		t.Fatal("captcha verify should be case sensitive")
	}
}

func TestGenerateButtonGrid(t *testing.T) {
	inst, err := Generate(model.Alarm{Mode: model.ModeFindButton})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	buttons, ok := inst.Payload["buttons"].([]map[string]interface{})
	if !ok || len(buttons) < 2 {
		t.Fatalf("button payload malformed: %+v", inst.Payload)
	}

	// 期望值必须指向网格里的某个按钮，且只有它不抖动
	found := false
	for _, b := range buttons {
		id := b["id"].(string)
		jitter := b["jitter"].(bool)
		if id == inst.Expected {
			found = true
			if jitter {
				t.Fatal("real button must not jitter")
			}
		} else if !jitter {
			t.Fatalf("fake button %s does not jitter", id)
		}
	}
	if !found {
		t.Fatalf("expected %q not present in grid", inst.Expected)
	}
}

func TestGenerateQRScan(t *testing.T) {
	inst, err := Generate(model.Alarm{Mode: model.ModeQRCode, ChallengeRef: "qr-token-42"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if inst.Expected != "qr-token-42" {
		t.Fatalf("qr expected = %q, want bound ref", inst.Expected)
	}
	if !Verify(inst, "qr-token-42") {
		t.Fatal("bound ref rejected")
	}
}

func TestGenerateUnknownMode(t *testing.T) {
	if _, err := Generate(model.Alarm{Mode: "carrier_pigeon"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestPolicyFor(t *testing.T) {
	cases := []struct {
		mode model.AlarmMode
		want RetryPolicy
	}{
		{model.ModeQuiz, RetryNewInstance},
		{model.ModeFindButton, RetryNewInstance},
		{model.ModeCaptcha, RetrySameUntilThreshold},
		{model.ModeQRCode, RetrySameInstance},
	}

	for _, tc := range cases {
		if got := PolicyFor(tc.mode); got != tc.want {
			t.Errorf("PolicyFor(%s) = %v, want %v", tc.mode, got, tc.want)
		}
	}
}

func TestVerifyNilInstance(t *testing.T) {
	if Verify(nil, "anything") {
		t.Fatal("nil instance must not verify")
	}
}
