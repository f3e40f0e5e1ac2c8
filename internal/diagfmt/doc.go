// Package diagfmt renders collected diagnostics for humans and machines.
//
// Pretty рисует компиляторный вид: заголовок с кодом, стрелка на позицию,
// строки исходника с подчёркиваниями и метками, дочерние note/help и
// подсказки с заменами. JSON выдаёт стабильное машинное представление тех
// же данных, построчный вариант даёт JSONEmitter.
//
// Both forms plug into diag.Handler through the Emitter interface; the
// batch entry points (Pretty, JSON) consume a sorted diag.Bag instead.
package diagfmt
