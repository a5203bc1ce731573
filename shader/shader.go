// Package shader holds the built-in WGSL sources and the fragment
// program loader. One fragment program drives every render target; the
// vertex stage is always the built-in fullscreen triangle.
package shader

// VertexWGSL covers the viewport with a single oversized triangle and
// hands the fragment stage normalized UV coordinates with y pointing
// down, matching image space.
const VertexWGSL = `struct VSOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> VSOut {
    var out: VSOut;
    let x = f32(i32(idx) / 2) * 4.0 - 1.0;
    let y = f32(i32(idx) % 2) * 4.0 - 1.0;
    out.position = vec4<f32>(x, y, 0.0, 1.0);
    out.uv = vec2<f32>((x + 1.0) * 0.5, 1.0 - (y + 1.0) * 0.5);
    return out;
}
`

// FrameUniformsWGSL declares the per-frame uniform block; its layout
// mirrors uniforms.FrameBlock byte for byte.
const FrameUniformsWGSL = `struct FrameUniforms {
    resolution: vec4<f32>,
    mouse_position: vec4<f32>,
    mouse_button: vec4<i32>,
    date: vec4<i32>,
    time: f32,
    time_delta: f32,
    frame_num: u32,
    num_textures: u32,
};
`

// BlitFragmentWGSL copies a sampled texture to the target, used for the
// final present to the swapchain.
const BlitFragmentWGSL = `@group(0) @binding(0) var samp: sampler;
@group(0) @binding(1) var tex: texture_2d<f32>;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(tex, samp, uv);
}
`

// SRGBFragmentWGSL is the terminal post-processing stage: it encodes
// linear color with the sRGB transfer function for file and stream
// output, where no sRGB target format does it for us.
const SRGBFragmentWGSL = FrameUniformsWGSL + `
@group(0) @binding(0) var<uniform> frame: FrameUniforms;
@group(1) @binding(0) var samp: sampler;
@group(1) @binding(1) var tex: texture_2d<f32>;

fn linear_to_srgb(c: vec3<f32>) -> vec3<f32> {
    let low = c * 12.92;
    let high = 1.055 * pow(c, vec3<f32>(1.0 / 2.4)) - 0.055;
    return mix(high, low, step(c, vec3<f32>(0.0031308)));
}

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    let c = textureSample(tex, samp, uv);
    return vec4<f32>(linear_to_srgb(c.rgb), c.a);
}
`

// SkeletonWGSL is the starter fragment program written by the generate
// flag: a window wiper sweeping with time, enough to confirm the frame
// uniforms are alive.
const SkeletonWGSL = FrameUniformsWGSL + `
@group(0) @binding(0) var<uniform> frame: FrameUniforms;
@group(1) @binding(0) var samp: sampler;

@fragment
fn fs_main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    var wiper = sin(0.5 * frame.time);
    wiper = wiper * wiper;
    if (uv.x < wiper) {
        return vec4<f32>(0.0, 0.5, 0.5, 1.0);
    }
    return vec4<f32>(0.5, 0.0, 1.0, 1.0);
}
`
