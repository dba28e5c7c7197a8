//go:build js && wasm

package main

import (
	"encoding/json"
	"syscall/js"

	"github.com/inamate/cellengine/backend-go/internal/engine"
	"github.com/inamate/cellengine/backend-go/internal/geom"
	"github.com/inamate/cellengine/backend-go/internal/geometry"
)

var eng *engine.Engine

func main() {
	eng = engine.NewEngine()

	// Create the engine API object
	cellEngine := js.Global().Get("Object").New()

	// --- Commands (frontend → backend) ---
	cellEngine.Set("loadDocument", js.FuncOf(loadDocument))
	cellEngine.Set("updateDocument", js.FuncOf(updateDocument))
	cellEngine.Set("loadSampleDocument", js.FuncOf(loadSampleDocument))
	cellEngine.Set("setPlayhead", js.FuncOf(setPlayhead))
	cellEngine.Set("play", js.FuncOf(play))
	cellEngine.Set("pause", js.FuncOf(pause))
	cellEngine.Set("togglePlay", js.FuncOf(togglePlay))
	cellEngine.Set("setCut", js.FuncOf(setCut))
	cellEngine.Set("setSelection", js.FuncOf(setSelection))
	cellEngine.Set("setSnapScale", js.FuncOf(setSnapScale))
	cellEngine.Set("tick", js.FuncOf(tick))

	// --- Edits ---
	cellEngine.Set("addStroke", js.FuncOf(addStroke))
	cellEngine.Set("removeCell", js.FuncOf(removeCell))
	cellEngine.Set("duplicate", js.FuncOf(duplicate))
	cellEngine.Set("moveCells", js.FuncOf(moveCells))
	cellEngine.Set("warp", js.FuncOf(warp))
	cellEngine.Set("splitControl", js.FuncOf(splitControl))
	cellEngine.Set("removeControl", js.FuncOf(removeControl))
	cellEngine.Set("eraseLasso", js.FuncOf(eraseLasso))

	// --- Queries (frontend ← backend) ---
	cellEngine.Set("render", js.FuncOf(render))
	cellEngine.Set("hitTest", js.FuncOf(hitTest))
	cellEngine.Set("nearestBezier", js.FuncOf(nearestBezier))
	cellEngine.Set("selectRect", js.FuncOf(selectRect))
	cellEngine.Set("selectLasso", js.FuncOf(selectLasso))
	cellEngine.Set("getSelectionBounds", js.FuncOf(getSelectionBounds))
	cellEngine.Set("getCut", js.FuncOf(getCut))
	cellEngine.Set("getPlaybackState", js.FuncOf(getPlaybackState))
	cellEngine.Set("getDocument", js.FuncOf(getDocument))
	cellEngine.Set("getSelection", js.FuncOf(getSelection))
	cellEngine.Set("getFrame", js.FuncOf(getFrame))
	cellEngine.Set("isPlaying", js.FuncOf(isPlaying))
	cellEngine.Set("getFPS", js.FuncOf(getFPS))
	cellEngine.Set("getTotalFrames", js.FuncOf(getTotalFrames))

	// Register on global scope
	js.Global().Set("cellEngine", cellEngine)

	// Signal that WASM is ready
	js.Global().Set("cellEngineWasmReady", js.ValueOf(true))

	// Keep Go runtime alive
	select {}
}

func ok() interface{} {
	return js.ValueOf(map[string]interface{}{"ok": true})
}

func fail(msg string) interface{} {
	return js.ValueOf(map[string]interface{}{"error": msg})
}

func result(err error) interface{} {
	if err != nil {
		return fail(err.Error())
	}
	return ok()
}

func idResult(id string, err error) interface{} {
	if err != nil {
		return fail(err.Error())
	}
	return js.ValueOf(map[string]interface{}{"ok": true, "id": id})
}

func idsJSON(ids []string, err error) interface{} {
	if err != nil {
		return fail(err.Error())
	}
	data, _ := json.Marshal(ids)
	return js.ValueOf(string(data))
}

func decodeArg(args []js.Value, i int, v any) bool {
	if len(args) <= i || args[i].Type() != js.TypeString {
		return false
	}
	return json.Unmarshal([]byte(args[i].String()), v) == nil
}

// --- Command Handlers ---

func loadDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing document JSON")
	}
	return result(eng.LoadDocument(args[0].String()))
}

func updateDocument(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing document JSON")
	}
	return result(eng.UpdateDocument(args[0].String()))
}

func loadSampleDocument(this js.Value, args []js.Value) interface{} {
	projectID := "proj_sample"
	if len(args) > 0 && args[0].Type() == js.TypeString {
		projectID = args[0].String()
	}

	eng.LoadSampleDocument(projectID)
	return ok()
}

func setPlayhead(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetPlayhead(args[0].Int())
	return nil
}

func play(this js.Value, args []js.Value) interface{} {
	eng.Play()
	return nil
}

func pause(this js.Value, args []js.Value) interface{} {
	eng.Pause()
	return nil
}

func togglePlay(this js.Value, args []js.Value) interface{} {
	eng.TogglePlay()
	return nil
}

func setCut(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing cut id")
	}
	return result(eng.SetCut(args[0].String()))
}

func setSelection(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		eng.SetSelection(nil)
		return nil
	}

	arr := args[0]
	if arr.Type() != js.TypeObject {
		eng.SetSelection(nil)
		return nil
	}

	length := arr.Length()
	ids := make([]string, length)
	for i := 0; i < length; i++ {
		ids[i] = arr.Index(i).String()
	}
	eng.SetSelection(ids)
	return nil
}

func setSnapScale(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	eng.SetSnapScale(args[0].Float())
	return nil
}

func tick(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Tick())
}

// --- Edit Handlers ---

// addStroke(linesJSON, color)
func addStroke(this js.Value, args []js.Value) interface{} {
	var lines []geometry.Line
	if !decodeArg(args, 0, &lines) {
		return fail("invalid lines JSON")
	}
	color := "#000000"
	if len(args) > 1 {
		color = args[1].String()
	}
	return idResult(eng.AddStroke(lines, color))
}

func removeCell(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing cell id")
	}
	return result(eng.RemoveCell(args[0].String()))
}

func duplicate(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return fail("missing cell id")
	}
	return idResult(eng.Duplicate(args[0].String()))
}

// moveCells(idsJSON, dx, dy)
func moveCells(this js.Value, args []js.Value) interface{} {
	var ids []string
	if !decodeArg(args, 0, &ids) || len(args) < 3 {
		return fail("usage: moveCells(idsJSON, dx, dy)")
	}
	return result(eng.Move(ids, args[1].Float(), args[2].Float()))
}

// warp(id, dx, dy, x, y, minDistance, maxDistance)
func warp(this js.Value, args []js.Value) interface{} {
	if len(args) < 7 {
		return fail("usage: warp(id, dx, dy, x, y, minDistance, maxDistance)")
	}
	p := geom.Pt(args[3].Float(), args[4].Float())
	return result(eng.Warp(args[0].String(), args[1].Float(), args[2].Float(), p, args[5].Float(), args[6].Float()))
}

func splitControl(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return fail("usage: splitControl(id, lineIndex, index)")
	}
	return result(eng.SplitControl(args[0].String(), args[1].Int(), args[2].Int()))
}

func removeControl(this js.Value, args []js.Value) interface{} {
	if len(args) < 3 {
		return fail("usage: removeControl(id, lineIndex, index)")
	}
	return result(eng.RemoveControl(args[0].String(), args[1].Int(), args[2].Int()))
}

// eraseLasso(pointsJSON) returns the ids of the cells it cut as JSON.
func eraseLasso(this js.Value, args []js.Value) interface{} {
	var points []geom.Point
	if !decodeArg(args, 0, &points) {
		return fail("invalid points JSON")
	}
	return idsJSON(eng.EraseLasso(points))
}

// --- Query Handlers ---

func render(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.Render())
}

func hitTest(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.ValueOf("")
	}
	return js.ValueOf(eng.HitTest(args[0].Float(), args[1].Float()))
}

func nearestBezier(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 {
		return js.Null()
	}
	nb, found := eng.NearestBezier(args[0].Float(), args[1].Float())
	if !found {
		return js.Null()
	}
	data, _ := json.Marshal(nb)
	return js.ValueOf(string(data))
}

func selectRect(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 {
		return fail("usage: selectRect(x, y, width, height)")
	}
	r := geom.Rect{X: args[0].Float(), Y: args[1].Float(), Width: args[2].Float(), Height: args[3].Float()}
	return idsJSON(eng.SelectRect(r), nil)
}

func selectLasso(this js.Value, args []js.Value) interface{} {
	var points []geom.Point
	if !decodeArg(args, 0, &points) {
		return fail("invalid points JSON")
	}
	return idsJSON(eng.SelectLasso(points))
}

func getSelectionBounds(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelectionBounds())
}

func getCut(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetCut())
}

func getPlaybackState(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetPlaybackState())
}

func getDocument(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetDocument())
}

func getSelection(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetSelection())
}

func getFrame(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetFrame())
}

func isPlaying(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.IsPlaying())
}

func getFPS(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetFPS())
}

func getTotalFrames(this js.Value, args []js.Value) interface{} {
	return js.ValueOf(eng.GetTotalFrames())
}
