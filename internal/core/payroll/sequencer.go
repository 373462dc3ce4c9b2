package payroll

import (
	"strconv"
	"strings"
)

// NextCheckNumber は支払済みの支払予定から次に使用すべき小切手番号を算出します。
// 数値として解釈できる小切手番号の最大値+1を返し、1件も存在しない場合は
// configuredStart をそのまま返します。数値でない値は無視され、エラーにはなりません。
// 純粋関数であり、番号の予約やロックは行いません。採番の直列化は呼び出し側の責務です。
func NextCheckNumber(paid []*Obligation, configuredStart int) int {
	highest := 0
	found := false

	for _, o := range paid {
		raw := strings.TrimSpace(o.CheckNumber)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		if !found || n > highest {
			highest = n
			found = true
		}
	}

	if !found {
		return configuredStart
	}
	return highest + 1
}
