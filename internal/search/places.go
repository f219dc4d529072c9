package search

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/norikae/norikae/internal/jorudan"
	"github.com/norikae/norikae/internal/tokenizer"
)

const (
	placeSeparator  = ","
	unknownCityCode = "不明"
)

// DescribePlace renders a suggestion either as its bare name or as
// "name（prefecture city[ address], citycode: …, 緯度: …, 経度: …, よみ: …）".
func DescribePlace(p jorudan.Place, onlyName bool) string {
	if onlyName {
		return p.Name
	}

	area := p.PrefName + p.CityName
	if p.Address != "" {
		area += " " + p.Address
	}

	cityCode := unknownCityCode
	if p.CityCode != nil {
		cityCode = fmt.Sprint(*p.CityCode)
	}

	return fmt.Sprintf("%s（%s, citycode: %s, 緯度: %s, 経度: %s, よみ: %s）",
		p.Name, area, cityCode, p.Location.Lat, p.Location.Lon, p.Yomi)
}

// Interleave merges the suggestion lists as R1,B1,S1,R2,B2,S2,…, skipping
// lists that run out.
func Interleave(resp *jorudan.SuggestResponse) []jorudan.Place {
	lists := [][]jorudan.Place{resp.Railway, resp.Bus, resp.Spots}
	longest := lo.Max(lo.Map(lists, func(l []jorudan.Place, _ int) int { return len(l) }))

	merged := make([]jorudan.Place, 0, len(resp.Railway)+len(resp.Bus)+len(resp.Spots))
	for i := 0; i < longest; i++ {
		for _, l := range lists {
			if i < len(l) {
				merged = append(merged, l[i])
			}
		}
	}
	return merged
}

// JoinWithinBudget joins items with "," and stops before the first item
// that would push the token count of the joined text over maxTokens.
// maxTokens <= 0 joins everything.
func JoinWithinBudget(items []string, counter tokenizer.Counter, maxTokens int) string {
	if maxTokens <= 0 {
		return strings.Join(items, placeSeparator)
	}

	var b strings.Builder
	for _, item := range items {
		next := item
		if b.Len() > 0 {
			next = placeSeparator + item
		}
		if counter.Count(b.String()+next) > maxTokens {
			break
		}
		b.WriteString(next)
	}
	return b.String()
}
