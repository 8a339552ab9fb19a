package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/agenthands/rhymenet/internal/app"
	"github.com/agenthands/rhymenet/internal/core"
	"github.com/agenthands/rhymenet/internal/core/lyrics"
	"github.com/agenthands/rhymenet/internal/core/model"
	"github.com/agenthands/rhymenet/internal/driver"
)

var (
	searchDepth  int
	searchTypes  []string
	searchGenres []string
	searchSort   string

	simpleAll bool

	figurativeType string

	highlight []string
)

var searchCmd = &cobra.Command{
	Use:   "search <seed>",
	Short: "Expand the rhyme network around a word",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			edgeFilter := model.EdgeFilter{Genres: searchGenres}
			for _, t := range searchTypes {
				edgeFilter.RhymeTypes = append(edgeFilter.RhymeTypes, model.RhymeType(t))
			}

			result, err := a.RhymeNet.Search(cmd.Context(), args[0], searchDepth, edgeFilter)
			if err != nil {
				return err
			}

			var order model.SortOrder
			if searchSort != "" {
				order = model.SortOrder{{ID: "cli", Field: model.SortField(searchSort), Direction: model.Asc}}
			}
			view := a.RhymeNet.View(result, model.FilterSet{}, order)

			if asJSON {
				return printJSON(map[string]interface{}{
					"status":   core.Status(result),
					"network":  result,
					"records":  view.Records,
					"families": view.Families,
				})
			}

			if result.Failure != nil {
				pterm.Warning.Printf("Store failed at depth %d: %s\n", result.Failure.Depth, result.Failure.Message)
			}
			pterm.Info.Printf("%s: %d words, %d connections, depth %d\n",
				result.SeedWord, result.TotalWords, result.TotalConnections, result.MaxDepthReached)
			if err := renderTable(recordRows(view.Records)); err != nil {
				return err
			}
			for _, f := range view.Families {
				pterm.Printf("family %s: %s\n", f.Label, strings.Join(f.Words, ", "))
			}
			return nil
		})
	},
}

var simpleCmd = &cobra.Command{
	Use:   "simple <word>",
	Short: "Find lyric lines ending in a word",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			results, err := a.RhymeNet.SimpleSearch(cmd.Context(), args[0], simpleAll, model.FilterSet{})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(results)
			}

			rows := [][]string{{"Song", "Artist", "Line", "#"}}
			for _, r := range results {
				rows = append(rows, []string{r.Song.Title, r.Song.Artist, r.MatchLine, strconv.Itoa(r.LineNumber)})
			}
			return renderTable(rows)
		})
	},
}

var figurativeCmd = &cobra.Command{
	Use:   "figurative [keyword...]",
	Short: "Find similes and metaphors in lyrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		keywords := args
		if len(keywords) == 0 {
			switch figurativeType {
			case "simile":
				keywords = lyrics.SimileKeywords
			case "metaphor":
				keywords = lyrics.MetaphorKeywords
			default:
				return fmt.Errorf("unknown figurative type %q", figurativeType)
			}
		}

		return withApp(cmd.Context(), func(a *app.App) error {
			results, err := a.RhymeNet.FigurativeSearch(cmd.Context(), keywords, model.FilterSet{})
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(results)
			}

			rows := [][]string{{"Song", "Artist", "Keyword", "Line"}}
			for _, r := range results {
				rows = append(rows, []string{r.SongTitle, r.Artist, r.Keyword, r.Line})
			}
			return renderTable(rows)
		})
	},
}

var lyricsCmd = &cobra.Command{
	Use:   "lyrics <song-id>",
	Short: "Print a song's lyrics, optionally with highlighted word contexts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			view, err := a.RhymeNet.Lyrics(cmd.Context(), args[0], highlight)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(view)
			}

			pterm.DefaultSection.Println(view.SongID)
			pterm.Println(view.Lyrics)
			for _, c := range view.Contexts {
				pterm.Info.Printf("line %d: %s\n", c.LineNumber, c.MatchLine)
			}
			return nil
		})
	},
}

var facetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "List the genres, years and artists in the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app.App) error {
			facets, err := a.RhymeNet.Facets(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(facets)
			}

			years := make([]string, len(facets.Years))
			for i, y := range facets.Years {
				years[i] = strconv.Itoa(y)
			}
			pterm.Info.Println("genres:  " + strings.Join(facets.Genres, ", "))
			pterm.Info.Println("years:   " + strings.Join(years, ", "))
			pterm.Info.Println("artists: " + strings.Join(facets.Artists, ", "))
			return nil
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed <fixture.json>",
	Short: "Load songs and rhyme pairs from a fixture file into the store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := driver.LoadFixtureFile(args[0])
		if err != nil {
			return err
		}

		return withApp(cmd.Context(), func(a *app.App) error {
			songs, pairs, err := fixture.Apply(cmd.Context(), a.Store)
			if err != nil {
				return err
			}
			pterm.Success.Printf("Seeded %d songs and %d rhyme pairs\n", songs, pairs)
			return nil
		})
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchDepth, "depth", "d", 0, "maximum depth (0 uses the configured default)")
	searchCmd.Flags().StringSliceVar(&searchTypes, "type", nil, "rhyme types to follow")
	searchCmd.Flags().StringSliceVar(&searchGenres, "genre", nil, "genres to follow")
	searchCmd.Flags().StringVar(&searchSort, "sort", "", "sort field: depth, rhyme_type, frequency, alphabetical")

	simpleCmd.Flags().BoolVar(&simpleAll, "all", false, "keep every matching line, not just one per song")

	figurativeCmd.Flags().StringVar(&figurativeType, "type", "simile", "keyword list when none are given: simile or metaphor")

	lyricsCmd.Flags().StringSliceVar(&highlight, "highlight", nil, "words to show in context")
}

// recordRows turns records into table rows with a header.
func recordRows(records []model.SortableRecord) [][]string {
	rows := [][]string{{"Word", "Depth", "Type", "Frequency", "Songs"}}
	for _, r := range records {
		rows = append(rows, []string{
			r.Word,
			strconv.Itoa(r.Depth),
			string(r.RhymeType),
			strconv.Itoa(r.Frequency),
			strconv.Itoa(len(r.Connections)),
		})
	}
	return rows
}
