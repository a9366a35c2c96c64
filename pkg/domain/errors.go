package domain

import (
	"errors"
	"fmt"
)

// 失敗の種類を表すセンチネルエラーです。errors.Is で判定します。
var (
	// ErrGenerationFailure は生成サービスへの到達不能、レート制限、使えない応答を表します。
	ErrGenerationFailure = errors.New("generation failure")
	// ErrSchemaViolation は構造化出力のパース失敗や必須フィールド欠落を表します。
	ErrSchemaViolation = errors.New("schema violation")
	// ErrLayoutFailure はキャプション合成に渡された画像が取得・デコードできないことを表します。
	ErrLayoutFailure = errors.New("layout failure")
	// ErrPersistenceFailure は成果物の書き込みに失敗したことを表します。
	ErrPersistenceFailure = errors.New("persistence failure")
)

// Stage はパイプラインの工程名です。
type Stage string

const (
	StagePhilosopherSelection Stage = "philosopher_selection"
	StagePlotSynthesis        Stage = "plot_synthesis"
	StageStoryboardSynthesis  Stage = "storyboard_synthesis"
	StageImageSynthesis       Stage = "image_synthesis"
	StageCaptionLayout        Stage = "caption_layout"
	StagePersistence          Stage = "persistence"
)

// StageError は、どの工程でどの種類の失敗が起きたかを保持します。
type StageError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap は種類のセンチネルと原因の両方を返します。
func (e *StageError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// GenerationFailure は stage の生成失敗として err を包みます。
func GenerationFailure(stage Stage, err error) error {
	return &StageError{Stage: stage, Kind: ErrGenerationFailure, Err: err}
}

// SchemaViolation は stage のスキーマ違反として err を包みます。
func SchemaViolation(stage Stage, err error) error {
	return &StageError{Stage: stage, Kind: ErrSchemaViolation, Err: err}
}

// LayoutFailure はレイアウト失敗として err を包みます。
func LayoutFailure(err error) error {
	return &StageError{Stage: StageCaptionLayout, Kind: ErrLayoutFailure, Err: err}
}

// PersistenceFailure は書き込み失敗として err を包みます。
func PersistenceFailure(err error) error {
	return &StageError{Stage: StagePersistence, Kind: ErrPersistenceFailure, Err: err}
}

// IsRetryable は、呼び出し側が同じ入力で再試行してよい失敗かどうかを返します。
// 再試行できるのは GenerationFailure だけです。SchemaViolation は再生成からやり直します。
func IsRetryable(err error) bool {
	return errors.Is(err, ErrGenerationFailure)
}

// FailedStage は err から工程名を取り出します。StageError を含まない場合は空文字です。
func FailedStage(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}
