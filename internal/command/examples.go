// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

// quickExamples is what --tldr prints when no tldr client is installed. Keep
// it in step with the Quick examples in docs/commands.
var quickExamples = map[string][][2]string{
	"aq": {
		{"marquee aq <person-id>", "movie credits of a person"},
		{"marquee aq <person-id> --tv", "tv credits of a person"},
	},
	"bq": {
		{"marquee bq", "all four charts in one table"},
		{"marquee bq worldwide --sort -gross", "worldwide chart, highest gross first"},
		{"marquee bq daily --date <date>", "one day of the daily chart"},
	},
	"cache": {
		{"marquee cache ls", "list cached entries"},
		{"marquee cache get <key>", "print one entry"},
		{"marquee cache purge --hours 24", "drop file entries older than a day"},
		{"marquee cache refresh worldwide --diff", "refetch a chart and show what changed"},
	},
	"mq": {
		{"marquee mq", "now playing"},
		{"marquee mq search <title>", "search movies"},
		{"marquee mq financials <movie-id>", "budget and revenue"},
	},
	"nq": {
		{"marquee nq", "latest film news"},
		{"marquee nq tv --limit 10", "ten tv stories"},
	},
	"oq": {
		{"marquee oq search <title>", "search OMDb"},
		{"marquee oq details <imdb-id>", "full OMDb record"},
	},
	"tvq": {
		{"marquee tvq", "popular shows"},
		{"marquee tvq season <show-id> <season>", "episodes of a season"},
	},
}
