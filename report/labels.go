package report

// Labels holds every user-visible string of the charts and the workbook.
type Labels struct {
	CountTitle     string
	CountSeries    string
	CountValueAxis string
	PassTitle      string
	PassSeries     string
	PassValueAxis  string
	AverageTitle   string
	TrendTitle     string
	TrendSeries    string
	TrendValueAxis string
	CourseAxis     string
	NoData         string

	SheetName string
	Headers   [3]string // student id, course, score
}

var locales = map[string]Labels{
	"en": {
		CountTitle:     "Students per Course",
		CountSeries:    "Students",
		CountValueAxis: "Students",
		PassTitle:      "Pass Rate per Course (%)",
		PassSeries:     "Pass rate",
		PassValueAxis:  "Pass rate",
		AverageTitle:   "Average Score per Course",
		TrendTitle:     "Score Trend",
		TrendSeries:    "Score",
		TrendValueAxis: "Score",
		CourseAxis:     "Course",
		NoData:         "No data",
		SheetName:      "Grade Report",
		Headers:        [3]string{"Student ID", "Course", "Score"},
	},
	"zh-TW": {
		CountTitle:     "課程學生數統計",
		CountSeries:    "學生人數",
		CountValueAxis: "學生數",
		PassTitle:      "課程通過率 (%)",
		PassSeries:     "通過率",
		PassValueAxis:  "通過率",
		AverageTitle:   "課程平均分數",
		TrendTitle:     "個人成績趨勢",
		TrendSeries:    "成績",
		TrendValueAxis: "分數",
		CourseAxis:     "課程",
		NoData:         "無資料",
		SheetName:      "成績報表",
		Headers:        [3]string{"學號", "課程", "分數"},
	},
}

// DefaultLocale is used when a requested locale is unknown.
const DefaultLocale = "en"

// LabelsFor returns the labels of locale, falling back to DefaultLocale.
func LabelsFor(locale string) Labels {
	if l, ok := locales[locale]; ok {
		return l
	}
	return locales[DefaultLocale]
}

// Locales lists the supported locale names.
func Locales() []string {
	return []string{"en", "zh-TW"}
}
