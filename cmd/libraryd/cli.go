package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/librarium/library/internal/analytics"
	"github.com/librarium/library/internal/db"
	"github.com/librarium/library/internal/engine"
	"github.com/librarium/library/internal/repo"
	"github.com/librarium/library/internal/textstats"
)

const dateLayout = "2006-01-02"

// runCLI drives the interactive menu. It is a thin presentation layer: every
// engine error is displayed and the loop continues.
func runCLI(ctx context.Context, eng *engine.Engine, catalog *repo.CatalogRepo, users *repo.UserRepo, stats *analytics.Service, in io.Reader) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Println("\n=== Library Management ===")
		fmt.Println("1. Add book")
		fmt.Println("2. Add ebook")
		fmt.Println("3. Register user")
		fmt.Println("4. Show available items")
		fmt.Println("5. Search items (title/author)")
		fmt.Println("6. Reserve item")
		fmt.Println("7. Cancel reservation")
		fmt.Println("8. My reservations")
		fmt.Println("9. Statistics")
		fmt.Println("10. Analyze text")
		fmt.Println("0. Quit")
		fmt.Print("> ")

		choice, ok := readLine(scanner)
		if !ok {
			return
		}

		var err error
		switch choice {
		case "1":
			err = addItem(ctx, scanner, catalog, db.KindBook)
		case "2":
			err = addItem(ctx, scanner, catalog, db.KindEBook)
		case "3":
			err = registerUser(ctx, scanner, users)
		case "4":
			err = showAvailable(ctx, catalog)
		case "5":
			err = searchItems(ctx, scanner, catalog)
		case "6":
			err = createReservation(ctx, scanner, eng)
		case "7":
			err = cancelReservation(ctx, scanner, eng)
		case "8":
			err = showUserReservations(ctx, scanner, eng, catalog)
		case "9":
			err = showStatistics(ctx, stats)
		case "10":
			analyzeText(scanner)
		case "0":
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Println("Unknown option, try again.")
		}

		if err != nil {
			fmt.Printf("\n[ERROR] %v\n", err)
		}
	}
}

func readLine(scanner *bufio.Scanner) (string, bool) {
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

func prompt(scanner *bufio.Scanner, label string) (string, bool) {
	fmt.Printf("%s: ", label)
	return readLine(scanner)
}

func addItem(ctx context.Context, scanner *bufio.Scanner, catalog *repo.CatalogRepo, kind string) error {
	title, _ := prompt(scanner, "Title")
	author, _ := prompt(scanner, "Author")
	isbn, _ := prompt(scanner, "ISBN")

	format := ""
	if kind == db.KindEBook {
		format, _ = prompt(scanner, "Format (EPUB/PDF/MOBI)")
	}

	if title == "" || author == "" || isbn == "" || (kind == db.KindEBook && format == "") {
		fmt.Println("All fields are required.")
		return nil
	}

	id, err := catalog.NextItemID(ctx)
	if err != nil {
		return err
	}

	var item *db.Item
	if kind == db.KindEBook {
		item, err = db.NewEBook(id, title, author, isbn, format)
	} else {
		item, err = db.NewBook(id, title, author, isbn)
	}
	if err != nil {
		return err
	}

	if err := catalog.AddItem(ctx, item); err != nil {
		return err
	}
	fmt.Println("Item added.")
	return nil
}

func registerUser(ctx context.Context, scanner *bufio.Scanner, users *repo.UserRepo) error {
	email, _ := prompt(scanner, "Email")
	if err := users.Register(ctx, email); err != nil {
		return err
	}
	fmt.Println("User registered.")
	return nil
}

func showAvailable(ctx context.Context, catalog *repo.CatalogRepo) error {
	items, err := catalog.ListAvailable(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Println("No items available.")
		return nil
	}
	for _, item := range items {
		fmt.Println(item.Describe())
	}
	return nil
}

func searchItems(ctx context.Context, scanner *bufio.Scanner, catalog *repo.CatalogRepo) error {
	fragment, _ := prompt(scanner, "Title or author fragment")

	byTitle, err := catalog.ByTitle(ctx, fragment)
	if err != nil {
		return err
	}
	byAuthor, err := catalog.ByAuthor(ctx, fragment)
	if err != nil {
		return err
	}

	seen := make(map[int]bool)
	found := false
	for _, item := range append(byTitle, byAuthor...) {
		if seen[item.ID] {
			continue
		}
		seen[item.ID] = true
		found = true
		fmt.Println(item.Describe())
	}
	if !found {
		fmt.Println("No matching items.")
	}
	return nil
}

func createReservation(ctx context.Context, scanner *bufio.Scanner, eng *engine.Engine) error {
	idText, _ := prompt(scanner, "Item ID")
	itemID, err := strconv.Atoi(idText)
	if err != nil {
		return fmt.Errorf("invalid item id %q", idText)
	}

	email, _ := prompt(scanner, "Email")

	fromText, _ := prompt(scanner, "From (YYYY-MM-DD)")
	from, err := time.Parse(dateLayout, fromText)
	if err != nil {
		return fmt.Errorf("invalid date %q", fromText)
	}

	toText, _ := prompt(scanner, "To (YYYY-MM-DD)")
	to, err := time.Parse(dateLayout, toText)
	if err != nil {
		return fmt.Errorf("invalid date %q", toText)
	}

	res, err := eng.CreateReservation(ctx, itemID, email, from, to)
	if err != nil {
		return err
	}
	fmt.Printf("Reservation #%d created (%d days).\n", res.ID, res.LengthDays())
	return nil
}

func cancelReservation(ctx context.Context, scanner *bufio.Scanner, eng *engine.Engine) error {
	idText, _ := prompt(scanner, "Reservation ID")
	id, err := strconv.Atoi(idText)
	if err != nil {
		return fmt.Errorf("invalid reservation id %q", idText)
	}
	return eng.CancelReservation(ctx, id)
}

func showUserReservations(ctx context.Context, scanner *bufio.Scanner, eng *engine.Engine, catalog *repo.CatalogRepo) error {
	email, _ := prompt(scanner, "Email")

	reservations, err := eng.UserReservations(ctx, email)
	if err != nil {
		return err
	}
	if len(reservations) == 0 {
		fmt.Println("No active reservations.")
		return nil
	}

	for _, r := range reservations {
		title := "unknown item"
		if item, err := catalog.GetItem(ctx, r.ItemID); err == nil {
			title = item.Title
		}
		fmt.Printf("#%d %q from %s to %s\n",
			r.ID, title, r.From.Format(dateLayout), r.To.Format(dateLayout))
	}
	return nil
}

func showStatistics(ctx context.Context, stats *analytics.Service) error {
	total, err := stats.TotalReservations(ctx)
	if err != nil {
		return err
	}
	avg, err := stats.AverageLengthDays(ctx)
	if err != nil {
		return err
	}
	popular, err := stats.MostPopularItemTitle(ctx)
	if err != nil {
		return err
	}
	rate, err := stats.FulfillmentRate(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Total reservations: %d\n", total)
	fmt.Printf("Average length: %.1f days\n", avg)
	fmt.Printf("Most popular item: %s\n", popular)
	fmt.Printf("Fulfillment rate: %.1f%%\n", rate)
	return nil
}

func analyzeText(scanner *bufio.Scanner) {
	text, _ := prompt(scanner, "Text")
	s := textstats.Analyze(text)

	fmt.Printf("Characters (with spaces): %d\n", s.CharactersWithSpaces)
	fmt.Printf("Characters (no spaces):   %d\n", s.CharactersWithoutSpaces)
	fmt.Printf("Letters / digits / punct: %d / %d / %d\n", s.Letters, s.Digits, s.Punctuation)
	fmt.Printf("Words: %d (unique %d)\n", s.WordCount, s.UniqueWordCount)
	fmt.Printf("Most common word: %q\n", s.MostCommonWord)
	fmt.Printf("Longest/shortest word: %q / %q\n", s.LongestWord, s.ShortestWord)
	fmt.Printf("Average word length: %.2f\n", s.AverageWordLength)
	fmt.Printf("Sentences: %d (avg %.2f words)\n", s.SentenceCount, s.AverageWordsPerSentence)
	fmt.Printf("Longest sentence: %q\n", s.LongestSentence)
}
