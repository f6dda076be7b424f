package game

import (
	"sort"
	"strconv"
	"strings"
)

const (
	LotteryMin   = 1
	LotteryMax   = 45
	LotteryPicks = 6
)

var lotteryRewards = map[int]int64{
	6: 100000,
	5: 10000,
	4: 1000,
	3: 1000,
}

// ParseTicket reads six numbers separated by spaces or commas. An empty
// string means a quick pick and returns nil.
func ParseTicket(s string) ([]int, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) == 0 {
		return nil, nil
	}
	nums := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, ErrTicketRange
		}
		nums = append(nums, n)
	}
	return ValidateTicket(nums)
}

// ValidateTicket returns a sorted copy of nums when they are six distinct
// numbers in 1..45.
func ValidateTicket(nums []int) ([]int, error) {
	if len(nums) != LotteryPicks {
		return nil, ErrTicketSize
	}
	out := append([]int(nil), nums...)
	sort.Ints(out)
	for i, n := range out {
		if n < LotteryMin || n > LotteryMax {
			return nil, ErrTicketRange
		}
		if i > 0 && out[i-1] == n {
			return nil, ErrTicketDuplicate
		}
	}
	return out, nil
}

// PickNumbers draws six distinct numbers without replacement, sorted.
func PickNumbers(src Source) []int {
	pool := make([]int, LotteryMax-LotteryMin+1)
	for i := range pool {
		pool[i] = LotteryMin + i
	}
	for i := 0; i < LotteryPicks; i++ {
		j := i + src.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := append([]int(nil), pool[:LotteryPicks]...)
	sort.Ints(out)
	return out
}

func CountMatches(ticket, winning []int) int {
	set := make(map[int]bool, len(winning))
	for _, n := range winning {
		set[n] = true
	}
	n := 0
	for _, t := range ticket {
		if set[t] {
			n++
		}
	}
	return n
}

func LotteryReward(matches int) int64 {
	return lotteryRewards[matches]
}

func FormatNumbers(nums []int) string {
	parts := make([]string, len(nums))
	for i, n := range nums {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
