package fieldmap

// Kind is the declared semantic type of a canonical field. Every canonical
// field has exactly one Kind; a cell that fails to coerce to it becomes
// absent, never a zero-defaulted value.
type Kind int

const (
	Int Kind = iota
	Float
	Text
)

// Field declares one canonical field: its stable name, its semantic type,
// and the ordered list of source column keys that may carry it. Aliases are
// tried in order; the first key present with a non-empty value wins.
//
// The alias lists encode the column-label drift across source releases: the
// same stat appears as "Performance_Gls" (two-level header) or "Gls" (flat
// header) depending on when and how the table was captured. Positional
// columns of dataframe exports surface as "Unnamed: N_level_0".
type Field struct {
	Name    string
	Kind    Kind
	Aliases []string
}

// registry is the single declarative alias table consumed by Map and by the
// storage backends (which derive their stat columns from it). Grouped by the
// source table category the stat originates from.
var registry = []Field{
	// Identity block shared by every category table. CSVs exported with the
	// header levels pre-joined carry keys like "Unnamed: 5_level_0_Min", so
	// each positional alias appears both bare and with the inner label.
	{Name: "shirt_number", Kind: Int, Aliases: []string{"#", "Unnamed: 1_level_0", "Unnamed: 1_level_0_#"}},
	{Name: "nation", Kind: Text, Aliases: []string{"Nation", "Unnamed: 2_level_0", "Unnamed: 2_level_0_Nation"}},
	{Name: "position", Kind: Text, Aliases: []string{"Pos", "Unnamed: 3_level_0", "Unnamed: 3_level_0_Pos"}},
	{Name: "age", Kind: Text, Aliases: []string{"Age", "Unnamed: 4_level_0", "Unnamed: 4_level_0_Age"}},
	{Name: "minutes_played", Kind: Int, Aliases: []string{"Min", "Unnamed: 5_level_0", "Unnamed: 5_level_0_Min"}},

	// Summary: performance.
	{Name: "goals", Kind: Int, Aliases: []string{"Performance_Gls", "Gls"}},
	{Name: "assists", Kind: Int, Aliases: []string{"Performance_Ast", "Ast"}},
	{Name: "pks_made", Kind: Int, Aliases: []string{"Performance_PK", "PK"}},
	{Name: "pks_attempted", Kind: Int, Aliases: []string{"Performance_PKatt", "PKatt"}},
	{Name: "shots", Kind: Int, Aliases: []string{"Performance_Sh", "Sh"}},
	{Name: "shots_on_target", Kind: Int, Aliases: []string{"Performance_SoT", "SoT"}},
	{Name: "yellow_cards", Kind: Int, Aliases: []string{"Performance_CrdY", "CrdY"}},
	{Name: "red_cards", Kind: Int, Aliases: []string{"Performance_CrdR", "CrdR"}},
	{Name: "touches", Kind: Int, Aliases: []string{"Performance_Touches", "Touches_Touches", "Touches"}},
	{Name: "tackles", Kind: Int, Aliases: []string{"Performance_Tkl", "Tackles_Tkl", "Tkl"}},
	{Name: "interceptions", Kind: Int, Aliases: []string{"Performance_Int", "Int"}},
	{Name: "blocks", Kind: Int, Aliases: []string{"Performance_Blocks", "Blocks_Blocks", "Blocks"}},

	// Summary: expected goals family.
	{Name: "xg", Kind: Float, Aliases: []string{"Expected_xG", "xG"}},
	{Name: "npxg", Kind: Float, Aliases: []string{"Expected_npxG", "npxG"}},
	{Name: "xag", Kind: Float, Aliases: []string{"Expected_xAG", "xAG"}},
	{Name: "xa", Kind: Float, Aliases: []string{"Expected_xA", "xA"}},

	// Summary: shot/goal creating actions.
	{Name: "sca", Kind: Int, Aliases: []string{"SCA_SCA", "SCA"}},
	{Name: "gca", Kind: Int, Aliases: []string{"SCA_GCA", "GCA"}},

	// Passing. The short summary block ("Passes_*") and the dedicated
	// passing table ("Total_*") report the same stats; aliases cover both.
	{Name: "passes_completed", Kind: Int, Aliases: []string{"Passes_Cmp", "Total_Cmp", "Outcomes_Cmp", "Cmp"}},
	{Name: "passes_attempted", Kind: Int, Aliases: []string{"Passes_Att", "Total_Att", "Att"}},
	{Name: "pass_completion_pct", Kind: Float, Aliases: []string{"Passes_Cmp%", "Total_Cmp%", "Cmp%"}},
	{Name: "progressive_passes", Kind: Int, Aliases: []string{"Passes_PrgP", "PrgP"}},
	{Name: "pass_total_distance", Kind: Int, Aliases: []string{"Total_TotDist", "TotDist"}},
	{Name: "pass_progressive_distance", Kind: Int, Aliases: []string{"Total_PrgDist", "PrgDist"}},
	{Name: "passes_short_completed", Kind: Int, Aliases: []string{"Short_Cmp"}},
	{Name: "passes_short_attempted", Kind: Int, Aliases: []string{"Short_Att"}},
	{Name: "pass_short_completion_pct", Kind: Float, Aliases: []string{"Short_Cmp%"}},
	{Name: "passes_medium_completed", Kind: Int, Aliases: []string{"Medium_Cmp"}},
	{Name: "passes_medium_attempted", Kind: Int, Aliases: []string{"Medium_Att"}},
	{Name: "pass_medium_completion_pct", Kind: Float, Aliases: []string{"Medium_Cmp%"}},
	{Name: "passes_long_completed", Kind: Int, Aliases: []string{"Long_Cmp"}},
	{Name: "passes_long_attempted", Kind: Int, Aliases: []string{"Long_Att"}},
	{Name: "pass_long_completion_pct", Kind: Float, Aliases: []string{"Long_Cmp%"}},
	{Name: "key_passes", Kind: Int, Aliases: []string{"KP"}},
	{Name: "passes_final_third", Kind: Int, Aliases: []string{"1/3"}},
	{Name: "passes_penalty_area", Kind: Int, Aliases: []string{"PPA"}},
	{Name: "crosses_penalty_area", Kind: Int, Aliases: []string{"CrsPA"}},

	// Pass types.
	{Name: "passes_live", Kind: Int, Aliases: []string{"Pass Types_Live", "Live"}},
	{Name: "passes_dead", Kind: Int, Aliases: []string{"Pass Types_Dead", "Dead"}},
	{Name: "passes_free_kicks", Kind: Int, Aliases: []string{"Pass Types_FK", "FK"}},
	{Name: "through_balls", Kind: Int, Aliases: []string{"Pass Types_TB", "TB"}},
	{Name: "switches", Kind: Int, Aliases: []string{"Pass Types_Sw", "Sw"}},
	{Name: "crosses", Kind: Int, Aliases: []string{"Performance_Crs", "Pass Types_Crs", "Crs"}},
	{Name: "throw_ins", Kind: Int, Aliases: []string{"Pass Types_TI", "TI"}},
	{Name: "corner_kicks", Kind: Int, Aliases: []string{"Pass Types_CK", "CK"}},
	{Name: "corners_in", Kind: Int, Aliases: []string{"Corner Kicks_In", "In"}},
	{Name: "corners_out", Kind: Int, Aliases: []string{"Corner Kicks_Out", "Out"}},
	{Name: "corners_straight", Kind: Int, Aliases: []string{"Corner Kicks_Str", "Str"}},
	{Name: "passes_offside", Kind: Int, Aliases: []string{"Outcomes_Off"}},
	{Name: "passes_blocked", Kind: Int, Aliases: []string{"Outcomes_Blocks"}},

	// Defensive actions.
	{Name: "tackles_won", Kind: Int, Aliases: []string{"Tackles_TklW", "TklW"}},
	{Name: "tackles_def_3rd", Kind: Int, Aliases: []string{"Tackles_Def 3rd", "Def 3rd"}},
	{Name: "tackles_mid_3rd", Kind: Int, Aliases: []string{"Tackles_Mid 3rd", "Mid 3rd"}},
	{Name: "tackles_att_3rd", Kind: Int, Aliases: []string{"Tackles_Att 3rd", "Att 3rd"}},
	{Name: "challenge_tackles", Kind: Int, Aliases: []string{"Challenges_Tkl"}},
	{Name: "challenges_attempted", Kind: Int, Aliases: []string{"Challenges_Att"}},
	{Name: "challenge_tackle_pct", Kind: Float, Aliases: []string{"Challenges_Tkl%", "Tkl%"}},
	{Name: "challenges_lost", Kind: Int, Aliases: []string{"Challenges_Lost"}},
	{Name: "blocked_shots", Kind: Int, Aliases: []string{"Blocks_Sh"}},
	{Name: "blocked_passes", Kind: Int, Aliases: []string{"Blocks_Pass"}},
	{Name: "tackles_plus_interceptions", Kind: Int, Aliases: []string{"Tkl+Int"}},
	{Name: "clearances", Kind: Int, Aliases: []string{"Clr"}},
	{Name: "errors_leading_to_shot", Kind: Int, Aliases: []string{"Err"}},

	// Possession.
	{Name: "touches_def_pen", Kind: Int, Aliases: []string{"Touches_Def Pen", "Def Pen"}},
	{Name: "touches_def_3rd", Kind: Int, Aliases: []string{"Touches_Def 3rd"}},
	{Name: "touches_mid_3rd", Kind: Int, Aliases: []string{"Touches_Mid 3rd"}},
	{Name: "touches_att_3rd", Kind: Int, Aliases: []string{"Touches_Att 3rd"}},
	{Name: "touches_att_pen", Kind: Int, Aliases: []string{"Touches_Att Pen", "Att Pen"}},
	{Name: "touches_live", Kind: Int, Aliases: []string{"Touches_Live"}},
	{Name: "take_ons_attempted", Kind: Int, Aliases: []string{"Take-Ons_Att"}},
	{Name: "take_ons_won", Kind: Int, Aliases: []string{"Take-Ons_Succ", "Succ"}},
	{Name: "take_on_success_pct", Kind: Float, Aliases: []string{"Take-Ons_Succ%", "Succ%"}},
	{Name: "take_ons_tackled", Kind: Int, Aliases: []string{"Take-Ons_Tkld", "Tkld"}},
	{Name: "carries", Kind: Int, Aliases: []string{"Carries_Carries", "Carries"}},
	{Name: "progressive_carries", Kind: Int, Aliases: []string{"Carries_PrgC", "PrgC"}},
	{Name: "carry_distance", Kind: Int, Aliases: []string{"Carries_TotDist"}},
	{Name: "carry_progressive_distance", Kind: Int, Aliases: []string{"Carries_PrgDist"}},
	{Name: "carries_final_third", Kind: Int, Aliases: []string{"Carries_1/3"}},
	{Name: "carries_penalty_area", Kind: Int, Aliases: []string{"Carries_CPA", "CPA"}},
	{Name: "miscontrols", Kind: Int, Aliases: []string{"Carries_Mis", "Mis"}},
	{Name: "dispossessed", Kind: Int, Aliases: []string{"Carries_Dis", "Dis"}},
	{Name: "passes_received", Kind: Int, Aliases: []string{"Receiving_Rec", "Rec"}},
	{Name: "progressive_passes_received", Kind: Int, Aliases: []string{"Receiving_PrgR", "PrgR"}},

	// Miscellaneous.
	{Name: "second_yellow_cards", Kind: Int, Aliases: []string{"Performance_2CrdY", "2CrdY"}},
	{Name: "fouls_committed", Kind: Int, Aliases: []string{"Performance_Fls", "Fls"}},
	{Name: "fouls_drawn", Kind: Int, Aliases: []string{"Performance_Fld", "Fld"}},
	{Name: "offsides", Kind: Int, Aliases: []string{"Performance_Off", "Off"}},
	{Name: "own_goals", Kind: Int, Aliases: []string{"Performance_OG", "OG"}},
	{Name: "pks_won", Kind: Int, Aliases: []string{"Performance_PKwon", "PKwon"}},
	{Name: "pks_conceded", Kind: Int, Aliases: []string{"Performance_PKcon", "PKcon"}},
	{Name: "ball_recoveries", Kind: Int, Aliases: []string{"Performance_Recov", "Recov"}},
	{Name: "aerials_won", Kind: Int, Aliases: []string{"Aerial Duels_Won", "Won"}},
	{Name: "aerials_lost", Kind: Int, Aliases: []string{"Aerial Duels_Lost", "Lost"}},
	{Name: "aerials_won_pct", Kind: Float, Aliases: []string{"Aerial Duels_Won%", "Won%"}},

	// Goalkeeping.
	{Name: "shots_on_target_against", Kind: Int, Aliases: []string{"Shot Stopping_SoTA", "SoTA"}},
	{Name: "goals_against", Kind: Int, Aliases: []string{"Shot Stopping_GA", "GA"}},
	{Name: "saves", Kind: Int, Aliases: []string{"Shot Stopping_Saves", "Saves"}},
	{Name: "save_pct", Kind: Float, Aliases: []string{"Shot Stopping_Save%", "Save%"}},
	{Name: "psxg", Kind: Float, Aliases: []string{"Shot Stopping_PSxG", "PSxG"}},
}

// All returns the canonical field registry in declaration order.
//
// The returned slice is shared; callers must not mutate it.
func All() []Field { return registry }

// ByName returns the declared field for name, if any.
func ByName(name string) (Field, bool) {
	for _, f := range registry {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}
