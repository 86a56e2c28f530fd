package checkout

import (
	"math/rand/v2"
	"strconv"
	"time"
)

const orderIDPrefix = "MH"

// NewOrderID joins the prefix, the last six digits of the unix millisecond clock
// and a random number below 1000. Good enough for one local shopper only.
func NewOrderID(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	if len(ms) > 6 {
		ms = ms[len(ms)-6:]
	}
	return orderIDPrefix + ms + strconv.Itoa(rand.IntN(1000))
}
