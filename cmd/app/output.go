package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atvirokodosprendimai/pcforge/internal/adapters/api"
	"github.com/atvirokodosprendimai/pcforge/internal/application"
	"github.com/atvirokodosprendimai/pcforge/internal/domain"
)

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func printKV(rows [][2]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "%s\t%s\n", row[0], row[1])
	}
	_ = w.Flush()
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println("no results")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		_, _ = fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

func formatID(v int64) string { return strconv.FormatInt(v, 10) }

func formatMaybeID(v *int64) string {
	if v == nil {
		return "-"
	}
	return formatID(*v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func printPageInfo(number, totalPages int, totalElements int64) {
	if totalPages <= 1 {
		return
	}
	w := application.NewPageWindow(number, totalPages)
	pages := make([]string, 0, len(w.Pages)+4)
	if w.ShowFirst {
		pages = append(pages, "1")
	}
	if w.LeadingGap {
		pages = append(pages, "…")
	}
	for _, p := range w.Pages {
		label := strconv.Itoa(p + 1)
		if p == w.Page {
			label = "[" + label + "]"
		}
		pages = append(pages, label)
	}
	if w.TrailingGap {
		pages = append(pages, "…")
	}
	if w.ShowLast {
		pages = append(pages, strconv.Itoa(w.TotalPages))
	}
	fmt.Printf("\npage %s of %d (%d total); use --page N (zero-based)\n", strings.Join(pages, " "), totalPages, totalElements)
}

func printParts(page domain.Page[domain.Part]) {
	rows := make([][]string, 0, len(page.Content))
	for _, p := range page.Content {
		rows = append(rows, []string{
			formatID(p.ID),
			string(p.Category),
			p.Name,
			p.Brand,
			application.FormatPrice(p.Price),
			strconv.Itoa(p.Wattage) + "W",
			fmt.Sprintf("%.1f (%d)", p.RatingAvg, p.RatingCount),
		})
	}
	printTable([]string{"ID", "CATEGORY", "NAME", "BRAND", "PRICE", "POWER", "RATING"}, rows)
	printPageInfo(page.Number, page.TotalPages, page.TotalElements)
}

func printPartList(parts []domain.Part) {
	printParts(domain.Page[domain.Part]{Content: parts})
}

func printPartDetail(d application.PartDetail, apiURL string) {
	p := d.Part
	printKV([][2]string{
		{"id", formatID(p.ID)},
		{"name", p.Name},
		{"category", p.Category.Label()},
		{"brand", p.Brand},
		{"price", application.FormatPrice(p.Price)},
		{"power", strconv.Itoa(p.Wattage) + "W"},
		{"rating", fmt.Sprintf("%.1f from %d ratings", p.RatingAvg, p.RatingCount)},
		{"image", api.ImageURL(apiURL, p.ImageURL)},
	})
	if len(d.Specs) > 0 {
		fmt.Println("\nspecs")
		rows := make([][2]string, 0, len(d.Specs))
		for _, e := range d.Specs {
			rows = append(rows, [2]string{"  " + e.Key, e.Value.String()})
		}
		printKV(rows)
	}
	if len(d.Prices) > 0 {
		fmt.Println("\nprice history")
		printPrices(d.Prices)
	}
	if len(d.Ratings) > 0 {
		fmt.Println("\nratings")
		printRatings(d.Ratings)
	}
}

func printRatings(items []domain.Rating) {
	rows := make([][]string, 0, len(items))
	for _, r := range items {
		rows = append(rows, []string{strconv.Itoa(r.Score) + "/5", r.UserName, r.Content, formatTime(r.CreatedAt)})
	}
	printTable([]string{"SCORE", "USER", "COMMENT", "AT"}, rows)
}

func printPrices(points []domain.PricePoint) {
	rows := make([][]string, 0, len(points))
	for _, p := range points {
		rows = append(rows, []string{formatTime(p.CrawledAt), application.FormatPrice(p.Price), p.Source})
	}
	printTable([]string{"CRAWLED_AT", "PRICE", "SOURCE"}, rows)
}

func printComparison(c application.Comparison) {
	if c.Right == nil {
		fmt.Printf("candidates to compare with %s:\n", c.Left.Name)
		printPartList(c.Candidates)
		return
	}
	rows := make([][]string, 0, len(c.Rows))
	for _, r := range c.Rows {
		left, right := r.Left, r.Right
		switch r.Verdict {
		case application.VerdictLeft:
			left += " ▲"
		case application.VerdictRight:
			right += " ▲"
		}
		rows = append(rows, []string{r.Key, left, right})
	}
	printTable([]string{"SPEC", c.Left.Name, c.Right.Name}, rows)
}

func printRefreshReport(r application.RefreshReport) {
	printPartList(r.Updated)
	if len(r.Failed) == 0 {
		return
	}
	ids := make([]int64, 0, len(r.Failed))
	for id := range r.Failed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fmt.Println("\nfailed")
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{formatID(id), r.Failed[id]})
	}
	printTable([]string{"PART_ID", "ERROR"}, rows)
}

func printDraft(d application.Draft) {
	title := d.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Println(title)
	rows := make([][]string, 0, len(d.Slots))
	for _, slot := range d.Slots {
		if slot.Part == nil {
			rows = append(rows, []string{slot.Category.Label(), "-", "-", "-", "-"})
			continue
		}
		rows = append(rows, []string{slot.Category.Label(), formatID(slot.Part.ID), slot.Part.Name, application.FormatPrice(slot.Part.Price), strconv.Itoa(slot.Part.Wattage) + "W"})
	}
	printTable([]string{"SLOT", "ID", "PART", "PRICE", "POWER"}, rows)
	fmt.Printf("\ntotal %s, %dW\n", application.FormatPrice(d.TotalPrice), d.TotalWattage)
	if c := d.Compatibility; c != nil {
		if c.Compatible {
			fmt.Println("compatibility: ✓ compatible")
		} else {
			fmt.Println("compatibility: ⚠ has warnings")
		}
		for _, w := range c.Warnings {
			fmt.Println("  - " + w)
		}
	}
}

func printBuilds(items []domain.Build) {
	rows := make([][]string, 0, len(items))
	for _, b := range items {
		rows = append(rows, []string{formatID(b.ID), b.Title, strconv.Itoa(len(b.PartIDs)), application.FormatPrice(b.TotalPrice), strconv.Itoa(b.WattageTotal) + "W", formatTime(b.CreatedAt)})
	}
	printTable([]string{"ID", "TITLE", "PARTS", "PRICE", "POWER", "CREATED_AT"}, rows)
}

func printBuild(b domain.Build) {
	printKV([][2]string{
		{"id", formatID(b.ID)},
		{"title", b.Title},
		{"price", application.FormatPrice(b.TotalPrice)},
		{"power", strconv.Itoa(b.WattageTotal) + "W"},
		{"created", formatTime(b.CreatedAt)},
	})
	if len(b.Parts) > 0 {
		fmt.Println()
		printPartList(b.Parts)
	}
}

func printPosts(page domain.Page[domain.Post]) {
	rows := make([][]string, 0, len(page.Content))
	for _, p := range page.Content {
		rows = append(rows, []string{formatID(p.ID), p.Title, p.UserName, strconv.Itoa(p.LikeCount), strconv.Itoa(p.DislikeCount), strconv.Itoa(p.CommentCount), formatTime(p.CreatedAt)})
	}
	printTable([]string{"ID", "TITLE", "AUTHOR", "LIKES", "DISLIKES", "COMMENTS", "CREATED_AT"}, rows)
	printPageInfo(page.Number, page.TotalPages, page.TotalElements)
}

func printPostDetail(d application.PostDetail, apiURL string) {
	p := d.Post
	images := make([]string, 0, len(p.ImageURLs))
	for _, img := range p.ImageURLs {
		images = append(images, api.ImageURL(apiURL, img))
	}
	printKV([][2]string{
		{"id", formatID(p.ID)},
		{"title", p.Title},
		{"author", fmt.Sprintf("%s (#%d)", p.UserName, p.UserID)},
		{"reactions", fmt.Sprintf("👍 %d  👎 %d", p.LikeCount, p.DislikeCount)},
		{"images", strings.Join(images, ", ")},
	})
	fmt.Println()
	fmt.Println(p.Content)
	fmt.Printf("\ncomments (%d)\n", application.CountNodes(d.Comments))
	printCommentTree(d.Comments, 0)
}

func printCommentTree(nodes []*domain.CommentNode, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		fmt.Printf("%s#%d %s: %s\n", indent, n.ID, n.UserName, n.Content)
		printCommentTree(n.Replies, depth+1)
	}
}

func printComments(items []domain.Comment) {
	rows := make([][]string, 0, len(items))
	for _, c := range items {
		rows = append(rows, []string{formatID(c.ID), formatID(c.PostID), formatMaybeID(c.ParentID), c.UserName, c.Content, formatTime(c.CreatedAt)})
	}
	printTable([]string{"ID", "POST", "PARENT", "USER", "CONTENT", "AT"}, rows)
}

func printUsers(items []domain.User) {
	rows := make([][]string, 0, len(items))
	for _, u := range items {
		rows = append(rows, []string{formatID(u.ID), u.Email, u.FullName, string(u.Role)})
	}
	printTable([]string{"ID", "EMAIL", "NAME", "ROLE"}, rows)
}

func printProfile(p application.Profile) {
	rows := [][2]string{{"user", fmt.Sprintf("%s (#%d)", p.FullName, p.UserID)}}
	if p.Own && p.Email != "" {
		rows = append(rows, [2]string{"email", p.Email})
	}
	printKV(rows)
	fmt.Println("\nbuilds")
	printBuilds(p.Builds)
	fmt.Println("\nposts")
	printPosts(domain.Page[domain.Post]{Content: p.Posts})
}

func printSession(snap application.SessionSnapshot, expiry time.Time, hasExpiry bool) {
	rows := [][2]string{{"state", string(snap.State)}}
	if snap.User != nil {
		rows = append(rows,
			[2]string{"user", fmt.Sprintf("%s (#%d)", snap.User.FullName, snap.User.ID)},
			[2]string{"email", snap.User.Email},
			[2]string{"role", string(snap.User.Role)},
		)
	}
	if hasExpiry {
		rows = append(rows, [2]string{"token expires", formatTime(expiry.Local())})
	}
	printKV(rows)
}

func printSpecFields(fields []application.SpecField) {
	rows := make([][]string, 0, len(fields))
	for i, f := range fields {
		rows = append(rows, []string{strconv.Itoa(i), f.Key, f.Value})
	}
	printTable([]string{"#", "KEY", "VALUE"}, rows)
}
