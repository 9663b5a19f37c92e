package channel

import "testing"

func TestShouldAutoBan(t *testing.T) {
	cases := []struct {
		name        string
		reportCount int
		score       int
		want        bool
	}{
		{"两个阈值都满足", 5, 3, true},
		{"远超阈值", 20, 15, true},
		{"举报数不足", 4, 10, false},
		{"分数不足", 10, 2, false},
		{"都不足", 1, 1, false},
		{"负分", 8, -2, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldAutoBan(tc.reportCount, tc.score); got != tc.want {
				t.Fatalf("ShouldAutoBan(%d, %d) = %v, 期望 %v", tc.reportCount, tc.score, got, tc.want)
			}
		})
	}
}

func TestEvaluateAutoBanTriggersAtThreshold(t *testing.T) {
	db := setupTestDB(t)

	ch, _ := UpsertOnReport(db, "UCauto", "Channel")
	for i := 0; i < 4; i++ {
		var err error
		ch, err = UpsertOnReport(db, "UCauto", "Channel")
		if err != nil {
			t.Fatalf("举报失败: %v", err)
		}
	}
	// 此时 reportCount=5, score=5
	if err := EvaluateAutoBan(db, ch); err != nil {
		t.Fatalf("评估失败: %v", err)
	}
	if !ch.IsBanned {
		t.Fatal("达到阈值后频道应被自动封禁")
	}
}

func TestEvaluateAutoBanIsOneWayLatch(t *testing.T) {
	db := setupTestDB(t)

	ch, _ := UpsertOnReport(db, "UClatch", "Channel")
	banned, err := SetBanned(db, ch.ID, true)
	if err != nil {
		t.Fatalf("封禁失败: %v", err)
	}

	// 分数远低于阈值，但已封禁的频道直接跳过评估
	if _, err := ApplyVoteDelta(db, banned.ID, -10); err != nil {
		t.Fatalf("施加delta失败: %v", err)
	}
	reloaded, _ := GetByID(db, banned.ID)
	if err := EvaluateAutoBan(db, reloaded); err != nil {
		t.Fatalf("评估失败: %v", err)
	}
	if !reloaded.IsBanned {
		t.Fatal("分数回落不应自动解封")
	}
}
